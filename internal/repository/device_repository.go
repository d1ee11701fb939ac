package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"PintellAPI/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// DeviceRepository reads devices and their owners from the device backend's
// tables.
type DeviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `
	d.id, d.hashed_mac_address, d.owner_id, u.username, d.battery, d.updated_at`

func (r *DeviceRepository) GetByID(ctx context.Context, id int) (*models.Device, error) {
	query := `SELECT` + deviceColumns + `
		FROM devices d
		JOIN users u ON u.id = d.owner_id
		WHERE d.id = $1`

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan device: %w", err)
	}
	return device, nil
}

// ListWithOwners returns every device that has an owner, grouped by owner.
func (r *DeviceRepository) ListWithOwners(ctx context.Context) ([]models.Device, error) {
	query := `SELECT` + deviceColumns + `
		FROM devices d
		JOIN users u ON u.id = d.owner_id
		ORDER BY u.username, d.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}

	return devices, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var device models.Device
	var battery sql.NullInt64
	var updated sql.NullTime

	err := row.Scan(
		&device.ID,
		&device.HashedMACAddress,
		&device.OwnerID,
		&device.Owner,
		&battery,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	if battery.Valid {
		b := int(battery.Int64)
		device.Battery = &b
	}
	if updated.Valid {
		t := updated.Time
		device.LastUpdated = &t
	}
	return &device, nil
}
