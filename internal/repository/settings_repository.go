package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"PintellAPI/internal/models"

	"github.com/lib/pq"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the user's settings, or ErrNotFound when the user never saved
// any.
func (r *SettingsRepository) Get(ctx context.Context, username string) (*models.NotificationSettings, error) {
	query := `
		SELECT battery_notifications, battery_tags,
		       moisture_notifications, moisture_tags, updated_at
		FROM notification_settings
		WHERE username = $1`

	var s models.NotificationSettings
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&s.BatteryNotifications,
		pq.Array(&s.SelectedBatteryTags),
		&s.MoistureNotifications,
		pq.Array(&s.SelectedMoistureTags),
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, username string, s *models.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings (
			username, battery_notifications, battery_tags,
			moisture_notifications, moisture_tags, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (username) DO UPDATE SET
			battery_notifications  = EXCLUDED.battery_notifications,
			battery_tags           = EXCLUDED.battery_tags,
			moisture_notifications = EXCLUDED.moisture_notifications,
			moisture_tags          = EXCLUDED.moisture_tags,
			updated_at             = NOW()
		RETURNING updated_at`

	battery := s.SelectedBatteryTags
	if battery == nil {
		battery = []string{}
	}
	moisture := s.SelectedMoistureTags
	if moisture == nil {
		moisture = []string{}
	}

	err := r.db.QueryRowContext(
		ctx, query,
		username,
		s.BatteryNotifications,
		pq.Array(battery),
		s.MoistureNotifications,
		pq.Array(moisture),
	).Scan(&s.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return fmt.Errorf("invalid settings for %s: %s", username, pqErr.Message)
		}
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
