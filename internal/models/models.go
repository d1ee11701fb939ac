// internal/models/models.go

package models

import (
	"time"
)

type Device struct {
	ID               int        `json:"id" db:"id"`
	HashedMACAddress string     `json:"hashed_mac_address" db:"hashed_mac_address"`
	OwnerID          int        `json:"owner_id" db:"owner_id"`
	Owner            string     `json:"owner" db:"owner"`
	Battery          *int       `json:"battery,omitempty" db:"battery"`
	LastUpdated      *time.Time `json:"last_updated,omitempty" db:"updated_at"`
}

// NotificationSettings is the per-user alert configuration. Tags are the raw
// strings the user picked ("20%", "0-2%").
type NotificationSettings struct {
	BatteryNotifications  bool      `json:"batteryNotifications" yaml:"battery_notifications"`
	SelectedBatteryTags   []string  `json:"selectedBatteryTags" yaml:"battery_tags"`
	MoistureNotifications bool      `json:"moistureNotifications" yaml:"moisture_notifications"`
	SelectedMoistureTags  []string  `json:"selectedMoistureTags" yaml:"moisture_tags"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

type DryingEstimate struct {
	DeviceID       int        `json:"device_id"`
	TargetValue    float64    `json:"target_value"`
	Slope          float64    `json:"slope"`
	Intercept      float64    `json:"intercept"`
	SampleCount    int        `json:"sample_count"`
	Estimable      bool       `json:"estimable"`
	RemainingMs    *float64   `json:"remaining_ms,omitempty"`
	EstimatedAt    time.Time  `json:"estimated_at"`
	ExpectedDoneAt *time.Time `json:"expected_done_at,omitempty"`
	Label          string     `json:"label"`
	MoisturePct    int        `json:"moisture_percentage"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
		MQTT     bool `json:"mqtt"`
		Store    bool `json:"store"`
	} `json:"services"`
}

// ReadingMessage is the payload of a device reading topic. Moisture is always
// read back from the stored session, so only the battery level is taken.
type ReadingMessage struct {
	Battery *int `json:"battery"`
}
