package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"PintellAPI/internal/models"
)

const history = `
device_id: 7
events:
  - value: 3000
    created_at: 2025-06-01T09:00:00Z
  - session_start: true
    created_at: 2025-06-01T09:30:00Z
  - value: 100
    created_at: 2025-06-01T10:00:00Z
  - value: 90
    created_at: 2025-06-01T10:01:00Z
  - value: 80
    created_at: 2025-06-01T10:02:00Z
`

func TestEstimate_UsesCurrentSession(t *testing.T) {
	var out bytes.Buffer
	if err := runEstimate(&out, []byte(history), 0, time.Time{}, true); err != nil {
		t.Fatalf("runEstimate failed: %v", err)
	}

	var est models.DryingEstimate
	if err := json.Unmarshal(out.Bytes(), &est); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if est.DeviceID != 7 || est.SampleCount != 3 {
		t.Errorf("Expected 3 readings of device 7, got %+v", est)
	}
	if !est.Estimable || est.RemainingMs == nil {
		t.Fatalf("Expected an estimable session, got %+v", est)
	}
	if diff := *est.RemainingMs - 480000; diff > 1 || diff < -1 {
		t.Errorf("Expected 480000ms remaining, got %v", *est.RemainingMs)
	}
}

func TestEstimate_TextOutput(t *testing.T) {
	var out bytes.Buffer
	now := time.Date(2025, 6, 1, 10, 2, 0, 0, time.UTC)
	if err := runEstimate(&out, []byte(history), 0, now, false); err != nil {
		t.Fatalf("runEstimate failed: %v", err)
	}
	for _, want := range []string{"Device:      7", "Remaining:   8m0s", "less than 1 hour"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestEstimate_NotEnoughData(t *testing.T) {
	data := `
device_id: 1
events:
  - value: 500
    created_at: 2025-06-01T10:00:00Z
`
	var out bytes.Buffer
	if err := runEstimate(&out, []byte(data), 0, time.Time{}, false); err != nil {
		t.Fatalf("runEstimate failed: %v", err)
	}
	if !strings.Contains(out.String(), "not enough data") {
		t.Errorf("Expected not enough data, got:\n%s", out.String())
	}
}

func TestEstimate_BadInput(t *testing.T) {
	for _, data := range []string{"device_id: [", "device_id: 1\nevents: []\n"} {
		if err := runEstimate(&bytes.Buffer{}, []byte(data), 0, time.Time{}, false); err == nil {
			t.Errorf("Expected error for %q", data)
		}
	}
}

func TestReplay(t *testing.T) {
	data := `
settings:
  battery_notifications: true
  battery_tags: ["20%"]
  moisture_notifications: true
  moisture_tags: ["0-2%"]
steps:
  - device: "1"
    battery: 30
    moisture: 40
  - device: "1"
    battery: 15
    advance: 10m
  - device: "1"
    moisture: 1
    advance: 10m
  - device: "1"
    battery: 10
    moisture: 1
`
	var out bytes.Buffer
	if err := runReplay(&out, []byte(data)); err != nil {
		t.Fatalf("runReplay failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 2 fired lines and a summary, got:\n%s", out.String())
	}
	if !strings.Contains(lines[0], "step 2") || !strings.Contains(lines[0], "20%") {
		t.Errorf("Unexpected battery line %q", lines[0])
	}
	if !strings.Contains(lines[1], "step 3") || !strings.Contains(lines[1], "0-2%") {
		t.Errorf("Unexpected moisture line %q", lines[1])
	}
	if lines[2] != "2 notifications fired, 2 unread" {
		t.Errorf("Unexpected summary %q", lines[2])
	}
}

func TestReplay_Validation(t *testing.T) {
	for _, data := range []string{"steps: []", "steps:\n  - battery: 10\n", "steps: ["} {
		if err := runReplay(&bytes.Buffer{}, []byte(data)); err == nil {
			t.Errorf("Expected error for %q", data)
		}
	}
}

func TestRootHasSubcommands(t *testing.T) {
	for _, name := range []string{"estimate", "replay"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %s, got %v (%v)", name, cmd, err)
		}
	}
}
