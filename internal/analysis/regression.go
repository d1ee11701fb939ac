// Package analysis fits trend lines over a device's current session and turns
// raw sensor values into the percentages the alert engine works with.
package analysis

import (
	"math"
	"sort"
	"time"

	"PintellAPI/internal/models"
)

const millisPerSecond = 1000.0

// RegressionResult is a least-squares line of raw value against seconds
// elapsed since the earliest datapoint.
type RegressionResult struct {
	Slope      float64            `json:"slope"`
	Intercept  float64            `json:"intercept"`
	Datapoints []models.Datapoint `json:"datapoints"`
}

// FitRegression fits value = slope*elapsedSeconds + intercept. Fewer than two
// datapoints yield a flat line through the first value (or 0). The input is
// not modified; the result carries a time-ordered copy.
func FitRegression(points []models.Datapoint) RegressionResult {
	if len(points) < 2 {
		intercept := 0.0
		if len(points) == 1 {
			intercept = points[0].Value
		}
		return RegressionResult{Slope: 0, Intercept: intercept, Datapoints: points}
	}

	session := make([]models.Datapoint, len(points))
	copy(session, points)
	sort.SliceStable(session, func(i, j int) bool {
		return session[i].CreatedAt.Before(session[j].CreatedAt)
	})

	t0 := session[0].CreatedAt
	n := float64(len(session))
	var sumX, sumY, sumXY, sumXX float64
	for _, dp := range session {
		x := dp.CreatedAt.Sub(t0).Seconds()
		y := dp.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope := 0.0
	if denominator := n*sumXX - sumX*sumX; denominator != 0 {
		slope = (n*sumXY - sumX*sumY) / denominator
	}
	intercept := (sumY - slope*sumX) / n

	return RegressionResult{Slope: slope, Intercept: intercept, Datapoints: session}
}

// EstimateTimeToTarget extrapolates the fitted line from now to targetValue
// and returns the remaining time in milliseconds. It returns +Inf when the
// session has fewer than two datapoints. A flat line produces a non-finite
// value; callers must run the result through Estimable before using it.
func EstimateTimeToTarget(points []models.Datapoint, targetValue float64, now time.Time) float64 {
	fit := FitRegression(points)
	if len(fit.Datapoints) < 2 {
		return math.Inf(1)
	}

	elapsed := now.Sub(fit.Datapoints[0].CreatedAt).Seconds()
	current := fit.Slope*elapsed + fit.Intercept
	remainingSeconds := (targetValue - current) / fit.Slope

	return remainingSeconds * millisPerSecond
}

// Estimable reports whether an EstimateTimeToTarget result is a usable
// duration. Non-finite values mean "not enough signal" and negative values
// mean the target has already been passed.
func Estimable(ms float64) bool {
	return !math.IsNaN(ms) && !math.IsInf(ms, 0) && ms >= 0
}
