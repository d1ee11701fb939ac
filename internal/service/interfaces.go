package service

import (
	"context"

	"PintellAPI/internal/models"
)

// IDeviceRepository reads devices together with their owner's username.
type IDeviceRepository interface {
	GetByID(ctx context.Context, id int) (*models.Device, error)
	ListWithOwners(ctx context.Context) ([]models.Device, error)
}

// IDatapointRepository yields the readings of a device's current session.
type IDatapointRepository interface {
	CurrentSession(ctx context.Context, deviceID int) ([]models.Datapoint, error)
}

type ISettingsRepository interface {
	Get(ctx context.Context, username string) (*models.NotificationSettings, error)
	Upsert(ctx context.Context, username string, s *models.NotificationSettings) error
}

// INotificationEngine is the part of the notification engine driven by
// device readings.
type INotificationEngine interface {
	HandleBatteryUpdate(username, deviceID string, batteryLevel int)
	HandleMoistureUpdate(username, deviceID string, moisturePercentage int)
	ResetDevice(deviceID string)
}
