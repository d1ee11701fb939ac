// Package notify decides when battery and moisture readings turn into user
// notifications, and owns the notification log and the active pop-up slot.
package notify

import (
	"fmt"
	"sync"
	"time"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/models"

	"github.com/google/uuid"
)

// DefaultRetention is how long a notification stays in the log.
const DefaultRetention = 72 * time.Hour

// lastSeenFlush bounds how stale the stored last-seen times may get while
// repeated readings leave every threshold untouched.
const lastSeenFlush = time.Hour

// SettingsSource yields a user's notification settings. Any error, including
// a missing user, is treated as notifications being disabled.
type SettingsSource interface {
	Lookup(username string) (models.NotificationSettings, error)
}

// Publisher is told about every notification that fires. It runs while the
// engine lock is held and must not call back into the engine.
type Publisher interface {
	Publish(n models.Notification)
}

type Option func(*Engine)

func WithStore(store Store) Option {
	return func(e *Engine) { e.store = store }
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRetention(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retention = d
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// Engine is the per-process notification engine. All state lives behind one
// mutex that is held for the whole of each update, so a reader never sees an
// arm flag set without the matching previous value.
type Engine struct {
	settings  SettingsSource
	store     Store
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
	retention time.Duration

	mu            sync.Mutex
	notifications []models.Notification
	activeID      string
	states        map[stateKey]*thresholdState
	lastSeen      map[string]time.Time
	savedAt       time.Time
}

func NewEngine(settings SettingsSource, opts ...Option) *Engine {
	e := &Engine{
		settings:  settings,
		store:     NewMemoryStore(),
		log:       logger.Default(),
		now:       time.Now,
		retention: DefaultRetention,
		states:    make(map[stateKey]*thresholdState),
		lastSeen:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore replaces the in-memory state with the store's snapshot. A missing
// snapshot leaves the engine empty.
func (e *Engine) Restore() error {
	snap, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load notification state: %w", err)
	}
	if snap == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifications = append([]models.Notification(nil), snap.Notifications...)
	e.activeID = snap.ActiveID
	e.states = make(map[stateKey]*thresholdState, len(snap.Thresholds))
	for _, r := range snap.Thresholds {
		st := &thresholdState{arm: r.Arm}
		if r.Previous != nil {
			st.observe(*r.Previous)
		}
		e.states[stateKey{DeviceID: r.DeviceID, Channel: r.Channel, Min: r.Min, Max: r.Max}] = st
	}
	e.lastSeen = make(map[string]time.Time, len(snap.LastSeen))
	for id, t := range snap.LastSeen {
		e.lastSeen[id] = t
	}

	e.savedAt = snap.SavedAt

	e.cleanupLocked(e.now())
	if _, ok := e.findLocked(e.activeID); !ok {
		e.activeID = ""
	}
	e.log.Info("Restored %d notifications and %d threshold states", len(e.notifications), len(e.states))
	return nil
}

func (e *Engine) lookupSettings(username string) (models.NotificationSettings, bool) {
	if e.settings == nil {
		return models.NotificationSettings{}, false
	}
	settings, err := e.settings.Lookup(username)
	if err != nil {
		e.log.Debug("No notification settings for %s: %v", username, err)
		return models.NotificationSettings{}, false
	}
	return settings, true
}

// HandleBatteryUpdate evaluates every configured battery threshold, highest
// first, against the device's current battery percentage.
//
// 0% and 100% fire on an exact match and unlatch once the level moves off the
// boundary. Any other threshold fires on a downward crossing: the previous
// reading for that threshold was at or above it and the current one is below.
// Its latch clears once the level rises above the threshold again.
func (e *Engine) HandleBatteryUpdate(username, deviceID string, batteryLevel int) {
	settings, ok := e.lookupSettings(username)
	if !ok || !settings.BatteryNotifications {
		return
	}
	thresholds := ParseBatteryThresholds(settings.SelectedBatteryTags)
	if len(thresholds) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.lastSeen[deviceID] = now

	changed := false
	for _, spec := range thresholds {
		st := e.stateLocked(newStateKey(deviceID, models.NotificationBattery, spec))
		threshold := spec.Min
		before := st.arm

		if e.evaluateBattery(st, threshold, batteryLevel) {
			e.addLocked(e.batteryNotification(deviceID, spec, batteryLevel), now)
			changed = true
		}
		if st.observe(batteryLevel) || st.arm != before {
			changed = true
		}
	}

	e.persistChangedLocked(changed, now)
}

func (e *Engine) evaluateBattery(st *thresholdState, threshold, level int) bool {
	fire := false

	if threshold == 0 || threshold == 100 {
		if level == threshold && st.arm == Unarmed {
			st.arm = Armed
			fire = true
		}
		if (threshold == 0 && level > 0) || (threshold == 100 && level < 100) {
			st.arm = Unarmed
		}
		return fire
	}

	if st.arm == Unarmed && st.hasPrevious && st.previous >= threshold && level < threshold {
		st.arm = Armed
		fire = true
	}
	if level > threshold {
		st.arm = Unarmed
	}
	return fire
}

// HandleMoistureUpdate evaluates every configured moisture band. A band fires
// when the percentage enters it while unarmed. Its latch clears only once the
// percentage leaves it on the high side, i.e. the item was wetted again.
func (e *Engine) HandleMoistureUpdate(username, deviceID string, moisturePercentage int) {
	settings, ok := e.lookupSettings(username)
	if !ok || !settings.MoistureNotifications {
		return
	}
	bands := ParseMoistureThresholds(settings.SelectedMoistureTags)
	if len(bands) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.lastSeen[deviceID] = now

	changed := false
	for _, band := range bands {
		st := e.stateLocked(newStateKey(deviceID, models.NotificationMoisture, band))
		before := st.arm

		switch {
		case moisturePercentage > band.Max:
			st.arm = Unarmed
		case st.arm == Unarmed && band.Contains(moisturePercentage):
			st.arm = Armed
			e.addLocked(e.moistureNotification(deviceID, band, moisturePercentage), now)
			changed = true
		}
		if st.observe(moisturePercentage) || st.arm != before {
			changed = true
		}
	}

	e.persistChangedLocked(changed, now)
}

func (e *Engine) stateLocked(key stateKey) *thresholdState {
	st, ok := e.states[key]
	if !ok {
		st = &thresholdState{arm: Unarmed}
		e.states[key] = st
	}
	return st
}

func (e *Engine) batteryNotification(deviceID string, spec ThresholdSpec, level int) models.Notification {
	description := fmt.Sprintf("Battery level has dropped below %d%% (currently at %d%%).", spec.Min, level)
	if spec.IsBoundary() {
		description = fmt.Sprintf("Battery level has reached %d%%.", level)
	}
	return models.Notification{
		Title:       fmt.Sprintf("Device %s: Battery Level Alert", deviceID),
		Description: description,
		Type:        models.NotificationBattery,
		DeviceID:    deviceID,
		Threshold:   spec.String(),
	}
}

func (e *Engine) moistureNotification(deviceID string, band ThresholdSpec, pct int) models.Notification {
	return models.Notification{
		Title:       fmt.Sprintf("Device %s: Moisture Level Alert", deviceID),
		Description: fmt.Sprintf("Moisture level has reached %d%% (alert range %s).", pct, band),
		Type:        models.NotificationMoisture,
		DeviceID:    deviceID,
		Threshold:   band.String(),
	}
}

// persistChangedLocked skips the save when a reading left every threshold as
// it was, unless the stored last-seen times are due a refresh.
func (e *Engine) persistChangedLocked(changed bool, now time.Time) {
	if !changed && now.Sub(e.savedAt) < lastSeenFlush {
		return
	}
	e.persistLocked()
}

func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	snap := e.snapshotLocked()
	if err := e.store.Save(snap); err != nil {
		e.log.Warn("Failed to persist notification state: %v", err)
		return
	}
	e.savedAt = snap.SavedAt
}

func (e *Engine) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Notifications: append([]models.Notification(nil), e.notifications...),
		ActiveID:      e.activeID,
		Thresholds:    make([]ThresholdRecord, 0, len(e.states)),
		LastSeen:      make(map[string]time.Time, len(e.lastSeen)),
		SavedAt:       e.now(),
	}
	for key, st := range e.states {
		rec := ThresholdRecord{
			DeviceID: key.DeviceID,
			Channel:  key.Channel,
			Min:      key.Min,
			Max:      key.Max,
			Arm:      st.arm,
		}
		if st.hasPrevious {
			prev := st.previous
			rec.Previous = &prev
		}
		snap.Thresholds = append(snap.Thresholds, rec)
	}
	for id, t := range e.lastSeen {
		snap.LastSeen[id] = t
	}
	return snap
}

// ArmStateOf reports the latch of one threshold. Unknown thresholds are
// unarmed.
func (e *Engine) ArmStateOf(deviceID string, channel models.NotificationType, spec ThresholdSpec) ArmState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[newStateKey(deviceID, channel, spec)]; ok {
		return st.arm
	}
	return Unarmed
}

// TrackedDevices returns how many devices currently hold threshold state.
func (e *Engine) TrackedDevices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	seen := make(map[string]bool)
	for key := range e.states {
		seen[key.DeviceID] = true
	}
	return len(seen)
}

func newNotificationID() string {
	return uuid.NewString()
}
