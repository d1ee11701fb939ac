package repository

import (
	"context"
	"database/sql"
	"fmt"

	"PintellAPI/internal/models"
)

// sessionMarkerValue is how the device backend stores a session start in the
// datapoints table. It never leaves this package.
const sessionMarkerValue = -1

type DatapointRepository struct {
	db *sql.DB
}

func NewDatapointRepository(db *sql.DB) *DatapointRepository {
	return &DatapointRepository{db: db}
}

// Events returns the device's datapoints as session events, oldest first.
func (r *DatapointRepository) Events(ctx context.Context, deviceID int) ([]models.SessionEvent, error) {
	query := `
		SELECT value, created_at
		FROM datapoints
		WHERE device_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query datapoints: %w", err)
	}
	defer rows.Close()

	events := []models.SessionEvent{}
	for rows.Next() {
		var dp models.Datapoint
		if err := rows.Scan(&dp.Value, &dp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan datapoint: %w", err)
		}
		events = append(events, toEvent(dp))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datapoints: %w", err)
	}

	return events, nil
}

// CurrentSession returns the readings after the device's latest session start.
func (r *DatapointRepository) CurrentSession(ctx context.Context, deviceID int) ([]models.Datapoint, error) {
	events, err := r.Events(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return models.CurrentSession(events), nil
}

func toEvent(dp models.Datapoint) models.SessionEvent {
	if dp.Value == sessionMarkerValue {
		return models.SessionStart(dp.CreatedAt)
	}
	return models.Reading(dp)
}
