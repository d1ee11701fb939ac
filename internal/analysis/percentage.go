package analysis

import (
	"math"

	"PintellAPI/internal/models"
)

const (
	// emptySessionMax stands in for the session maximum before any reading.
	emptySessionMax = 3300.0
	// minMoistureScale keeps a nearly dry session from reading as 100%.
	minMoistureScale = 100.0
)

// MoisturePercentage scales the latest reading of a session against the
// session's own maximum. Sessions that never exceed 100 raw units are treated
// as low-range sensors and scaled by a tenth.
func MoisturePercentage(session []models.Datapoint) int {
	actualMax := emptySessionMax
	latest := 0.0

	if len(session) > 0 {
		actualMax = session[0].Value
		for _, dp := range session[1:] {
			if dp.Value > actualMax {
				actualMax = dp.Value
			}
		}
		latest = session[len(session)-1].Value
	}

	if actualMax < minMoistureScale {
		return int(math.Round((latest / 100) * 10))
	}

	effectiveMax := math.Max(actualMax, minMoistureScale)
	return int(math.Min(100, math.Round((latest/effectiveMax)*100)))
}
