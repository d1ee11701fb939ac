package analysis

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"PintellAPI/internal/models"
)

var sessionStart = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func linearSession() []models.Datapoint {
	values := []float64{100, 90, 80, 70}
	points := make([]models.Datapoint, len(values))
	for i, v := range values {
		points[i] = models.Datapoint{
			Value:     v,
			CreatedAt: sessionStart.Add(time.Duration(i) * time.Minute),
		}
	}
	return points
}

func TestFitRegression_Linear(t *testing.T) {
	fit := FitRegression(linearSession())

	if math.Abs(fit.Slope-(-1.0/6.0)) > 1e-9 {
		t.Errorf("Expected slope -1/6, got %v", fit.Slope)
	}
	if math.Abs(fit.Intercept-100) > 1e-9 {
		t.Errorf("Expected intercept 100, got %v", fit.Intercept)
	}
	if len(fit.Datapoints) != 4 {
		t.Errorf("Expected 4 datapoints, got %d", len(fit.Datapoints))
	}
}

func TestFitRegression_OrderInvariant(t *testing.T) {
	ordered := FitRegression(linearSession())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := linearSession()
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		fit := FitRegression(shuffled)
		if math.Abs(fit.Slope-ordered.Slope) > 1e-12 || math.Abs(fit.Intercept-ordered.Intercept) > 1e-9 {
			t.Fatalf("Shuffle %d changed the fit: got (%v, %v), want (%v, %v)",
				i, fit.Slope, fit.Intercept, ordered.Slope, ordered.Intercept)
		}
		for j := 1; j < len(fit.Datapoints); j++ {
			if fit.Datapoints[j].CreatedAt.Before(fit.Datapoints[j-1].CreatedAt) {
				t.Fatalf("Datapoints not sorted after fit")
			}
		}
	}
}

func TestFitRegression_DoesNotMutateInput(t *testing.T) {
	input := linearSession()
	input[0], input[3] = input[3], input[0]
	first := input[0]

	FitRegression(input)

	if input[0] != first {
		t.Errorf("Input slice was reordered")
	}
}

func TestFitRegression_Degenerate(t *testing.T) {
	tests := []struct {
		name          string
		points        []models.Datapoint
		wantIntercept float64
	}{
		{"empty", nil, 0},
		{"single", []models.Datapoint{{Value: 42, CreatedAt: sessionStart}}, 42},
		{"same timestamp", []models.Datapoint{
			{Value: 10, CreatedAt: sessionStart},
			{Value: 20, CreatedAt: sessionStart},
		}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := FitRegression(tt.points)
			if fit.Slope != 0 {
				t.Errorf("Expected slope 0, got %v", fit.Slope)
			}
			if fit.Intercept != tt.wantIntercept {
				t.Errorf("Expected intercept %v, got %v", tt.wantIntercept, fit.Intercept)
			}
		})
	}
}

func TestEstimateTimeToTarget_InsufficientData(t *testing.T) {
	cases := [][]models.Datapoint{
		nil,
		{},
		{{Value: 500, CreatedAt: sessionStart}},
	}
	for _, points := range cases {
		got := EstimateTimeToTarget(points, 0, sessionStart.Add(time.Hour))
		if !math.IsInf(got, 1) {
			t.Errorf("Expected +Inf for %d datapoints, got %v", len(points), got)
		}
		if Estimable(got) {
			t.Errorf("+Inf must not be estimable")
		}
	}
}

func TestEstimateTimeToTarget_Linear(t *testing.T) {
	// At the last reading (t=180s, value 70) the line reaches 0 after 420s.
	now := sessionStart.Add(3 * time.Minute)
	got := EstimateTimeToTarget(linearSession(), 0, now)

	if math.Abs(got-420000) > 1e-6 {
		t.Errorf("Expected 420000ms, got %v", got)
	}
	if !Estimable(got) {
		t.Errorf("Expected estimate to be usable")
	}

	later := sessionStart.Add(5 * time.Minute)
	got = EstimateTimeToTarget(linearSession(), 0, later)
	if math.Abs(got-300000) > 1e-6 {
		t.Errorf("Expected 300000ms two minutes later, got %v", got)
	}
}

func TestEstimateTimeToTarget_PastTarget(t *testing.T) {
	now := sessionStart.Add(20 * time.Minute)
	got := EstimateTimeToTarget(linearSession(), 0, now)

	if got >= 0 {
		t.Fatalf("Expected negative estimate once past target, got %v", got)
	}
	if Estimable(got) {
		t.Errorf("Negative estimate must not be estimable")
	}
}

func TestEstimateTimeToTarget_FlatSession(t *testing.T) {
	points := []models.Datapoint{
		{Value: 50, CreatedAt: sessionStart},
		{Value: 50, CreatedAt: sessionStart.Add(time.Minute)},
		{Value: 50, CreatedAt: sessionStart.Add(2 * time.Minute)},
	}
	got := EstimateTimeToTarget(points, 0, sessionStart.Add(3*time.Minute))

	if Estimable(got) {
		t.Errorf("Flat session must not produce an estimate, got %v", got)
	}
}

func TestBuildDryingEstimate(t *testing.T) {
	est := BuildDryingEstimate(7, linearSession(), 0, sessionStart.Add(3*time.Minute))

	if !est.Estimable {
		t.Fatalf("Expected estimable result")
	}
	if est.RemainingMs == nil || math.Abs(*est.RemainingMs-420000) > 1e-6 {
		t.Errorf("Unexpected remaining ms: %v", est.RemainingMs)
	}
	if est.Label != "less than 1 hour" {
		t.Errorf("Unexpected label %q", est.Label)
	}
	if est.SampleCount != 4 || est.DeviceID != 7 {
		t.Errorf("Unexpected metadata: %+v", est)
	}

	empty := BuildDryingEstimate(7, nil, 0, sessionStart)
	if empty.Estimable || empty.RemainingMs != nil {
		t.Errorf("Expected no estimate for empty session")
	}
	if empty.Label != "not enough data" {
		t.Errorf("Unexpected label %q", empty.Label)
	}

	past := BuildDryingEstimate(7, linearSession(), 0, sessionStart.Add(time.Hour))
	if past.Label != "dry" {
		t.Errorf("Expected dry label, got %q", past.Label)
	}
}

func pointsAt(values ...float64) []models.Datapoint {
	points := make([]models.Datapoint, len(values))
	for i, v := range values {
		points[i] = models.Datapoint{Value: v, CreatedAt: sessionStart.Add(time.Duration(i) * time.Minute)}
	}
	return points
}

func TestBuildDryingEstimate_Outcomes(t *testing.T) {
	tests := []struct {
		name          string
		session       []models.Datapoint
		target        float64
		now           time.Time
		wantEstimable bool
		wantLabel     string
	}{
		{"falling", linearSession(), 0, sessionStart.Add(3 * time.Minute), true, "less than 1 hour"},
		{"single reading", pointsAt(500), 0, sessionStart, false, LabelNotEnoughData},
		{"flat", pointsAt(50, 50, 50), 0, sessionStart.Add(3 * time.Minute), false, LabelNotDrying},
		{"nearly flat", pointsAt(50, 49.9999999), 0, sessionStart.Add(2 * time.Minute), false, LabelNotDrying},
		{"rising above target", pointsAt(50, 60, 70), 0, sessionStart.Add(2 * time.Minute), false, LabelNotDrying},
		{"rising below target", pointsAt(50, 60, 70), 250, sessionStart.Add(2 * time.Minute), false, LabelDry},
		{"past target", linearSession(), 0, sessionStart.Add(time.Hour), false, LabelDry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := BuildDryingEstimate(1, tt.session, tt.target, tt.now)

			if est.Estimable != tt.wantEstimable {
				t.Errorf("Expected estimable=%v, got %v", tt.wantEstimable, est.Estimable)
			}
			if est.Label != tt.wantLabel {
				t.Errorf("Expected label %q, got %q", tt.wantLabel, est.Label)
			}
			if tt.wantEstimable {
				if est.ExpectedDoneAt == nil || est.RemainingMs == nil {
					t.Fatalf("Expected a completion time, got %+v", est)
				}
				if est.ExpectedDoneAt.Before(tt.now) {
					t.Errorf("Completion %v is before now %v", est.ExpectedDoneAt, tt.now)
				}
			} else if est.ExpectedDoneAt != nil || est.RemainingMs != nil {
				t.Errorf("Expected no completion time, got %v / %v", est.ExpectedDoneAt, est.RemainingMs)
			}
		})
	}
}

func TestBuildDryingEstimate_NearlyFlatSlope(t *testing.T) {
	session := pointsAt(50, 49.9999999)
	fit := FitRegression(session)
	if fit.Slope >= 0 || fit.Slope < -2e-9 {
		t.Fatalf("Expected slope around -1.7e-9, got %v", fit.Slope)
	}

	ms := EstimateTimeToTarget(session, 0, sessionStart.Add(2*time.Minute))
	if !Estimable(ms) {
		t.Fatalf("Expected a finite positive extrapolation, got %v", ms)
	}
	if ms <= maxEstimateMs {
		t.Fatalf("Expected extrapolation beyond the horizon, got %v", ms)
	}

	est := BuildDryingEstimate(1, session, 0, sessionStart.Add(2*time.Minute))
	if est.Estimable || est.ExpectedDoneAt != nil {
		t.Errorf("Nearly flat session must not be served as a duration: %+v", est)
	}
}

func TestDryingLabel(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Minute, "less than 1 hour"},
		{90 * time.Minute, "1-2 hours"},
		{3 * time.Hour, "2-4 hours"},
		{5 * time.Hour, "4-8 hours"},
		{12 * time.Hour, "more than 8 hours"},
	}
	for _, tt := range tests {
		if got := DryingLabel(tt.in); got != tt.want {
			t.Errorf("DryingLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
