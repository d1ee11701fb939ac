package cache

import (
	"strings"
	"testing"
	"time"

	"PintellAPI/internal/models"
	"PintellAPI/internal/notify"
)

func TestSnapshotEncoding(t *testing.T) {
	prev := 30
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := &notify.Snapshot{
		Notifications: []models.Notification{{
			ID:        "n-1",
			Title:     "Device 7: Battery Level Alert",
			Timestamp: at,
			Type:      models.NotificationBattery,
			DeviceID:  "7",
			Threshold: "20%",
			Unread:    true,
		}},
		ActiveID: "n-1",
		Thresholds: []notify.ThresholdRecord{
			{DeviceID: "7", Channel: models.NotificationBattery, Min: 20, Max: 20, Arm: notify.Armed, Previous: &prev},
		},
		LastSeen: map[string]time.Time{"7": at},
		SavedAt:  at,
	}

	data, err := encodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"arm":"armed"`) {
		t.Errorf("Expected arm state encoded as text, got %s", data)
	}

	back, err := decodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if back.ActiveID != "n-1" || len(back.Notifications) != 1 || back.Notifications[0].DeviceID != "7" {
		t.Errorf("Unexpected snapshot: %+v", back)
	}
	rec := back.Thresholds[0]
	if rec.Arm != notify.Armed || rec.Previous == nil || *rec.Previous != 30 {
		t.Errorf("Unexpected threshold record: %+v", rec)
	}
	if !back.LastSeen["7"].Equal(at) {
		t.Errorf("Expected last seen %v, got %v", at, back.LastSeen["7"])
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := decodeSnapshot([]byte("{not json")); err == nil {
		t.Error("Expected error for malformed state")
	}
	if _, err := decodeSnapshot([]byte(`{"thresholds":[{"arm":"sideways"}]}`)); err == nil {
		t.Error("Expected error for unknown arm state")
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore(Options{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("Expected connection error")
	}
	if !strings.Contains(err.Error(), "failed to connect to Redis") {
		t.Errorf("Unexpected error: %v", err)
	}
}
