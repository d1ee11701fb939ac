package models

import (
	"sort"
	"time"
)

// Datapoint is one raw sensor reading.
type Datapoint struct {
	Value     float64   `json:"value" yaml:"value"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

type EventKind int

const (
	KindReading EventKind = iota
	KindSessionStart
)

func (k EventKind) String() string {
	switch k {
	case KindReading:
		return "reading"
	case KindSessionStart:
		return "session_start"
	default:
		return "unknown"
	}
}

// SessionEvent is either a reading or the marker that opens a new session.
type SessionEvent struct {
	Kind    EventKind
	Reading Datapoint
	At      time.Time
}

func Reading(dp Datapoint) SessionEvent {
	return SessionEvent{Kind: KindReading, Reading: dp, At: dp.CreatedAt}
}

func SessionStart(at time.Time) SessionEvent {
	return SessionEvent{Kind: KindSessionStart, At: at}
}

func (e SessionEvent) IsSessionStart() bool {
	return e.Kind == KindSessionStart
}

// CurrentSession returns the readings recorded after the latest session
// start, ordered by time. Without any marker every reading belongs to it.
// A marker sharing a timestamp with readings is ordered before them.
func CurrentSession(events []SessionEvent) []Datapoint {
	ordered := make([]SessionEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].At.Equal(ordered[j].At) {
			return ordered[i].IsSessionStart() && !ordered[j].IsSessionStart()
		}
		return ordered[i].At.Before(ordered[j].At)
	})

	start := 0
	for i, e := range ordered {
		if e.IsSessionStart() {
			start = i + 1
		}
	}

	session := make([]Datapoint, 0, len(ordered)-start)
	for _, e := range ordered[start:] {
		if !e.IsSessionStart() {
			session = append(session, e.Reading)
		}
	}
	return session
}
