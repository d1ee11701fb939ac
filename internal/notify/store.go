package notify

import (
	"sync"
	"time"

	"PintellAPI/internal/models"
)

// Store persists engine snapshots across restarts. Both methods are best
// effort: the engine logs failures and keeps its in-memory state.
type Store interface {
	Load() (*Snapshot, error)
	Save(snapshot *Snapshot) error
}

// Snapshot is the durable form of the engine state.
type Snapshot struct {
	Notifications []models.Notification `json:"notifications"`
	ActiveID      string                `json:"active_id,omitempty"`
	Thresholds    []ThresholdRecord     `json:"thresholds"`
	LastSeen      map[string]time.Time  `json:"last_seen"`
	SavedAt       time.Time             `json:"saved_at"`
}

type ThresholdRecord struct {
	DeviceID string                  `json:"device_id"`
	Channel  models.NotificationType `json:"channel"`
	Min      int                     `json:"min"`
	Max      int                     `json:"max"`
	Arm      ArmState                `json:"arm"`
	Previous *int                    `json:"previous,omitempty"`
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Notifications: append([]models.Notification(nil), s.Notifications...),
		ActiveID:      s.ActiveID,
		Thresholds:    make([]ThresholdRecord, len(s.Thresholds)),
		LastSeen:      make(map[string]time.Time, len(s.LastSeen)),
		SavedAt:       s.SavedAt,
	}
	for i, r := range s.Thresholds {
		if r.Previous != nil {
			prev := *r.Previous
			r.Previous = &prev
		}
		out.Thresholds[i] = r
	}
	for id, t := range s.LastSeen {
		out.LastSeen[id] = t
	}
	return out
}

// MemoryStore keeps the latest snapshot in process memory. It backs the
// engine when no external store is configured.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
	saves    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.clone(), nil
}

func (m *MemoryStore) Save(snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot.clone()
	m.saves++
	return nil
}

// Saves returns how many snapshots have been written.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
