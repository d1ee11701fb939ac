package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PintellAPI/internal/models"
	"PintellAPI/internal/notify"
	"PintellAPI/internal/repository"
)

var ErrInvalidSettings = errors.New("invalid notification settings")

// SettingsService owns users' notification settings and feeds them to the
// notification engine.
type SettingsService struct {
	repo    ISettingsRepository
	timeout time.Duration
}

func NewSettingsService(repo ISettingsRepository, lookupTimeout time.Duration) *SettingsService {
	if lookupTimeout <= 0 {
		lookupTimeout = 3 * time.Second
	}
	return &SettingsService{repo: repo, timeout: lookupTimeout}
}

// Lookup implements notify.SettingsSource.
func (s *SettingsService) Lookup(username string) (models.NotificationSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	settings, err := s.repo.Get(ctx, username)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return *settings, nil
}

// Get returns the user's settings, or disabled defaults if none were saved.
func (s *SettingsService) Get(ctx context.Context, username string) (*models.NotificationSettings, error) {
	settings, err := s.repo.Get(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.NotificationSettings{
			SelectedBatteryTags:  []string{},
			SelectedMoistureTags: []string{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, username string, settings *models.NotificationSettings) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidSettings)
	}
	for _, tag := range settings.SelectedBatteryTags {
		spec, ok := notify.ParseThreshold(tag)
		if !ok {
			return fmt.Errorf("%w: battery tag %q has no percentage", ErrInvalidSettings, tag)
		}
		if spec.Max > 100 {
			return fmt.Errorf("%w: battery tag %q exceeds 100%%", ErrInvalidSettings, tag)
		}
	}
	for _, tag := range settings.SelectedMoistureTags {
		spec, ok := notify.ParseThreshold(tag)
		if !ok {
			return fmt.Errorf("%w: moisture tag %q has no percentage", ErrInvalidSettings, tag)
		}
		if spec.Max > 100 {
			return fmt.Errorf("%w: moisture tag %q exceeds 100%%", ErrInvalidSettings, tag)
		}
	}
	return s.repo.Upsert(ctx, username, settings)
}
