package analysis

import (
	"testing"
	"time"

	"PintellAPI/internal/models"
)

func values(vs ...float64) []models.Datapoint {
	points := make([]models.Datapoint, len(vs))
	for i, v := range vs {
		points[i] = models.Datapoint{Value: v, CreatedAt: sessionStart.Add(time.Duration(i) * time.Minute)}
	}
	return points
}

func TestMoisturePercentage(t *testing.T) {
	tests := []struct {
		name    string
		session []models.Datapoint
		want    int
	}{
		{"empty session", nil, 0},
		{"half of session max", values(3000, 2200, 1500), 50},
		{"latest is max", values(80, 150), 100},
		{"dry", values(2000, 0), 0},
		{"low range sensor", values(50, 20), 2},
		{"low range sensor rounding", values(90, 47), 5},
		{"exactly at scale floor", values(100, 40), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoisturePercentage(tt.session); got != tt.want {
				t.Errorf("MoisturePercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}
