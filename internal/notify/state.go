package notify

import (
	"fmt"

	"PintellAPI/internal/models"
)

// ArmState latches a threshold once it has fired so the same crossing does
// not fire again on every poll.
type ArmState int

const (
	Unarmed ArmState = iota
	Armed
)

func (s ArmState) String() string {
	switch s {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	default:
		return "unknown"
	}
}

func (s ArmState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ArmState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unarmed":
		*s = Unarmed
	case "armed":
		*s = Armed
	default:
		return fmt.Errorf("unknown arm state %q", text)
	}
	return nil
}

// stateKey identifies one threshold of one channel on one device.
type stateKey struct {
	DeviceID string
	Channel  models.NotificationType
	Min      int
	Max      int
}

func newStateKey(deviceID string, channel models.NotificationType, spec ThresholdSpec) stateKey {
	return stateKey{DeviceID: deviceID, Channel: channel, Min: spec.Min, Max: spec.Max}
}

func (k stateKey) String() string {
	return fmt.Sprintf("%s:%s:%d-%d", k.Channel, k.DeviceID, k.Min, k.Max)
}

type thresholdState struct {
	arm         ArmState
	previous    int
	hasPrevious bool
}

// observe records value as the latest reading and reports whether it differs
// from what was held before.
func (s *thresholdState) observe(value int) bool {
	changed := !s.hasPrevious || s.previous != value
	s.previous = value
	s.hasPrevious = true
	return changed
}
