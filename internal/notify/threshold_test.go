package notify

import (
	"reflect"
	"testing"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		tag    string
		want   ThresholdSpec
		wantOK bool
	}{
		{"20%", ThresholdSpec{20, 20}, true},
		{"0-2%", ThresholdSpec{0, 2}, true},
		{"5 - 0 %", ThresholdSpec{0, 5}, true},
		{"10-20-30%", ThresholdSpec{10, 20}, true},
		{"12.6%", ThresholdSpec{13, 13}, true},
		{"dry", ThresholdSpec{}, false},
		{"", ThresholdSpec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := ParseThreshold(tt.tag)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseThreshold(%q) = %v, %v; want %v, %v", tt.tag, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseBatteryThresholds(t *testing.T) {
	got := ParseBatteryThresholds([]string{"20%", "100%", "abc", "20 %", "50-10%", "0%"})
	want := []ThresholdSpec{{100, 100}, {50, 50}, {20, 20}, {0, 0}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := ParseBatteryThresholds(nil); len(got) != 0 {
		t.Errorf("Expected no thresholds for nil tags, got %v", got)
	}
}

func TestParseMoistureThresholds(t *testing.T) {
	got := ParseMoistureThresholds([]string{"10-20%", "0-2%", "20-10%", "none", "5%"})
	want := []ThresholdSpec{{10, 20}, {0, 2}, {5, 5}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestThresholdSpec(t *testing.T) {
	band := ThresholdSpec{Min: 0, Max: 2}
	for pct, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, -1: false} {
		if got := band.Contains(pct); got != want {
			t.Errorf("Contains(%d) = %v, want %v", pct, got, want)
		}
	}

	if band.String() != "0-2%" {
		t.Errorf("Expected 0-2%%, got %s", band.String())
	}
	if got := (ThresholdSpec{Min: 20, Max: 20}).String(); got != "20%" {
		t.Errorf("Expected 20%%, got %s", got)
	}

	if !(ThresholdSpec{Min: 0, Max: 0}).IsBoundary() || !(ThresholdSpec{Min: 100, Max: 100}).IsBoundary() {
		t.Error("Expected 0% and 100% to be boundaries")
	}
	if (ThresholdSpec{Min: 20, Max: 20}).IsBoundary() || band.IsBoundary() {
		t.Error("Expected interior thresholds not to be boundaries")
	}
}

func TestArmStateText(t *testing.T) {
	for _, s := range []ArmState{Unarmed, Armed} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}
		var back ArmState
		if err := back.UnmarshalText(text); err != nil || back != s {
			t.Errorf("Expected %s back, got %s (err %v)", s, back, err)
		}
	}

	var s ArmState
	if err := s.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("Expected error for unknown arm state")
	}
}
