package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"PintellAPI/internal/models"
	"PintellAPI/internal/repository"
)

type fakeDevices struct {
	devices []models.Device
	listErr error
}

func (f *fakeDevices) GetByID(ctx context.Context, id int) (*models.Device, error) {
	for _, d := range f.devices {
		if d.ID == id {
			device := d
			return &device, nil
		}
	}
	return nil, fmt.Errorf("device %d: %w", id, repository.ErrNotFound)
}

func (f *fakeDevices) ListWithOwners(ctx context.Context) ([]models.Device, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.devices, nil
}

type fakeDatapoints struct {
	sessions map[int][]models.Datapoint
	failFor  map[int]bool
}

func (f *fakeDatapoints) CurrentSession(ctx context.Context, deviceID int) ([]models.Datapoint, error) {
	if f.failFor[deviceID] {
		return nil, errors.New("connection reset")
	}
	return f.sessions[deviceID], nil
}

type engineCall struct {
	kind     string
	username string
	deviceID string
	value    int
}

type fakeEngine struct {
	mu    sync.Mutex
	calls []engineCall
}

func (f *fakeEngine) record(c engineCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeEngine) HandleBatteryUpdate(username, deviceID string, level int) {
	f.record(engineCall{"battery", username, deviceID, level})
}

func (f *fakeEngine) HandleMoistureUpdate(username, deviceID string, pct int) {
	f.record(engineCall{"moisture", username, deviceID, pct})
}

func (f *fakeEngine) ResetDevice(deviceID string) {
	f.record(engineCall{kind: "reset", deviceID: deviceID})
}

func (f *fakeEngine) Calls() []engineCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engineCall(nil), f.calls...)
}

type fakeSettingsRepo struct {
	stored map[string]models.NotificationSettings
	err    error
}

func (f *fakeSettingsRepo) Get(ctx context.Context, username string) (*models.NotificationSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.stored[username]
	if !ok {
		return nil, fmt.Errorf("settings for %s: %w", username, repository.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, username string, s *models.NotificationSettings) error {
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		f.stored = make(map[string]models.NotificationSettings)
	}
	f.stored[username] = *s
	return nil
}
