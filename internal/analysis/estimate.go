package analysis

import (
	"time"

	"PintellAPI/internal/models"
)

const (
	LabelNotEnoughData = "not enough data"
	LabelDry           = "dry"
	LabelNotDrying     = "not drying"
)

// maxEstimate bounds extrapolation. A nearly flat fit reaches the target only
// after centuries, which is reported as not drying.
const (
	maxEstimate   = 30 * 24 * time.Hour
	maxEstimateMs = float64(maxEstimate / time.Millisecond)
)

// BuildDryingEstimate runs the fit and the extrapolation for one device and
// packs the outcome into the shape served over HTTP. Only a falling fit whose
// current value is still above target yields a duration.
func BuildDryingEstimate(deviceID int, session []models.Datapoint, target float64, now time.Time) *models.DryingEstimate {
	fit := FitRegression(session)
	ms := EstimateTimeToTarget(session, target, now)

	est := &models.DryingEstimate{
		DeviceID:    deviceID,
		TargetValue: target,
		Slope:       fit.Slope,
		Intercept:   fit.Intercept,
		SampleCount: len(fit.Datapoints),
		EstimatedAt: now,
		MoisturePct: MoisturePercentage(fit.Datapoints),
	}

	if len(fit.Datapoints) < 2 {
		est.Label = LabelNotEnoughData
		return est
	}

	elapsed := now.Sub(fit.Datapoints[0].CreatedAt).Seconds()
	current := fit.Slope*elapsed + fit.Intercept

	switch {
	case current <= target:
		est.Label = LabelDry
		return est
	case fit.Slope >= 0 || !Estimable(ms) || ms > maxEstimateMs:
		est.Label = LabelNotDrying
		return est
	}

	remaining := time.Duration(ms * float64(time.Millisecond))
	done := now.Add(remaining)
	est.Estimable = true
	est.RemainingMs = &ms
	est.ExpectedDoneAt = &done
	est.Label = DryingLabel(remaining)
	return est
}

// DryingLabel buckets a remaining duration into the coarse wording shown on
// the device page.
func DryingLabel(remaining time.Duration) string {
	switch {
	case remaining < time.Hour:
		return "less than 1 hour"
	case remaining < 2*time.Hour:
		return "1-2 hours"
	case remaining < 4*time.Hour:
		return "2-4 hours"
	case remaining < 8*time.Hour:
		return "4-8 hours"
	default:
		return "more than 8 hours"
	}
}
