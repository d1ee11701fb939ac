package service

import (
	"context"
	"fmt"
	"time"

	"PintellAPI/internal/analysis"
	"PintellAPI/internal/models"
)

// SessionService fits the drying curve of a device's current session.
type SessionService struct {
	devices    IDeviceRepository
	datapoints IDatapointRepository
	now        func() time.Time
}

func NewSessionService(devices IDeviceRepository, datapoints IDatapointRepository) *SessionService {
	return &SessionService{
		devices:    devices,
		datapoints: datapoints,
		now:        time.Now,
	}
}

func (s *SessionService) session(ctx context.Context, deviceID int) ([]models.Datapoint, error) {
	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}
	points, err := s.datapoints.CurrentSession(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session of device %d: %w", deviceID, err)
	}
	return points, nil
}

func (s *SessionService) Regression(ctx context.Context, deviceID int) (*analysis.RegressionResult, error) {
	points, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	result := analysis.FitRegression(points)
	return &result, nil
}

// Estimate predicts when the current session reaches target.
func (s *SessionService) Estimate(ctx context.Context, deviceID int, target float64) (*models.DryingEstimate, error) {
	points, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return analysis.BuildDryingEstimate(deviceID, points, target, s.now()), nil
}
