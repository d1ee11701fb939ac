package models

import "time"

type NotificationType string

const (
	NotificationBattery  NotificationType = "battery"
	NotificationMoisture NotificationType = "moisture"
)

// Notification is one fired alert kept in the notification log.
type Notification struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Type        NotificationType `json:"type"`
	DeviceID    string           `json:"deviceId"`
	Threshold   string           `json:"thresholdOrPercentage"`
	Unread      bool             `json:"unread"`
	Dismissed   bool             `json:"dismissed"`
}

// ActiveNotification is the notification currently presented as a pop-up.
// Show is false once it has been read or dismissed elsewhere.
type ActiveNotification struct {
	Notification Notification `json:"notification"`
	Show         bool         `json:"show"`
}

type DismissRequest struct {
	WasRead bool `json:"was_read"`
}
