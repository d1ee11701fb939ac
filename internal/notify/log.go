package notify

import (
	"sort"
	"time"

	"PintellAPI/internal/models"
)

// AddNotification appends n to the log as a new unread notification and
// returns the stored copy. ID and Timestamp are assigned by the engine.
func (e *Engine) AddNotification(n models.Notification) models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored := e.addLocked(n, e.now())
	e.persistLocked()
	return stored
}

func (e *Engine) addLocked(n models.Notification, now time.Time) models.Notification {
	n.ID = newNotificationID()
	n.Timestamp = now
	n.Unread = true
	n.Dismissed = false

	e.notifications = append(e.notifications, n)
	e.cleanupLocked(now)

	if !e.activeShowableLocked() {
		e.activeID = n.ID
	}

	e.log.Info("Notification fired: device=%s type=%s threshold=%s", n.DeviceID, n.Type, n.Threshold)
	if e.publisher != nil {
		e.publisher.Publish(n)
	}
	return n
}

// cleanupLocked drops notifications past the retention window, then sweeps
// threshold state of devices that have neither a notification left nor been
// updated within the window.
func (e *Engine) cleanupLocked(now time.Time) {
	cutoff := now.Add(-e.retention)

	kept := make([]models.Notification, 0, len(e.notifications))
	for _, n := range e.notifications {
		if n.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, n)
	}
	if dropped := len(e.notifications) - len(kept); dropped > 0 {
		e.log.Debug("Dropped %d notifications older than %v", dropped, e.retention)
	}
	e.notifications = kept

	if _, ok := e.findLocked(e.activeID); !ok {
		e.activeID = ""
	}

	live := make(map[string]bool, len(e.notifications))
	for _, n := range e.notifications {
		live[n.DeviceID] = true
	}
	for id, seen := range e.lastSeen {
		if !live[id] && seen.Before(cutoff) {
			delete(e.lastSeen, id)
		}
	}
	for key := range e.states {
		if live[key.DeviceID] {
			continue
		}
		if _, recent := e.lastSeen[key.DeviceID]; !recent {
			delete(e.states, key)
		}
	}
}

func (e *Engine) findLocked(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i := range e.notifications {
		if e.notifications[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) activeShowableLocked() bool {
	i, ok := e.findLocked(e.activeID)
	if !ok {
		return false
	}
	n := e.notifications[i]
	return n.Unread && !n.Dismissed
}

// GetAllNotifications returns a copy of the log, newest first. Notifications
// sharing a timestamp come out in reverse insertion order.
func (e *Engine) GetAllNotifications() []models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Notification, len(e.notifications))
	for i, n := range e.notifications {
		out[len(out)-1-i] = n
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, n := range e.notifications {
		if n.Unread {
			count++
		}
	}
	return count
}

// GetActiveNotification returns the notification in the active slot, if any.
func (e *Engine) GetActiveNotification() (models.ActiveNotification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.findLocked(e.activeID)
	if !ok {
		return models.ActiveNotification{}, false
	}
	n := e.notifications[i]
	return models.ActiveNotification{Notification: n, Show: n.Unread && !n.Dismissed}, true
}

// DismissActiveNotification closes the pop-up. When the user did not open it
// the notification stays unread but will not pop up again. The oldest
// remaining unread, undismissed notification takes over the slot.
func (e *Engine) DismissActiveNotification(wasRead bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i, ok := e.findLocked(e.activeID); ok {
		e.notifications[i].Dismissed = true
		if wasRead {
			e.notifications[i].Unread = false
		}
	}
	e.activeID = ""
	e.showNextLocked()
	e.persistLocked()
}

// ShowNextNotification promotes the oldest unread, undismissed notification
// into the active slot when the slot is free.
func (e *Engine) ShowNextNotification() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeShowableLocked() {
		return
	}
	e.activeID = ""
	e.showNextLocked()
	e.persistLocked()
}

func (e *Engine) showNextLocked() {
	next := -1
	for i, n := range e.notifications {
		if !n.Unread || n.Dismissed {
			continue
		}
		if next < 0 || n.Timestamp.Before(e.notifications[next].Timestamp) {
			next = i
		}
	}
	if next >= 0 {
		e.activeID = e.notifications[next].ID
	}
}

// MarkNotificationAsRead marks one notification read and dismissed. The
// active slot is left as it is. It reports whether the id was found.
func (e *Engine) MarkNotificationAsRead(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.findLocked(id)
	if !ok {
		return false
	}
	e.notifications[i].Unread = false
	e.notifications[i].Dismissed = true
	e.persistLocked()
	return true
}

func (e *Engine) MarkAllAsRead() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.notifications {
		e.notifications[i].Unread = false
		e.notifications[i].Dismissed = true
	}
	e.activeID = ""
	e.persistLocked()
}

// DeleteAllNotifications empties the log. Threshold latches are kept so a
// condition that is still true does not fire again straight away.
func (e *Engine) DeleteAllNotifications() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifications = nil
	e.activeID = ""
	e.persistLocked()
}

// ResetDevice forgets everything about a device: its notifications, its
// threshold latches and previous values.
func (e *Engine) ResetDevice(deviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]models.Notification, 0, len(e.notifications))
	for _, n := range e.notifications {
		if n.DeviceID != deviceID {
			kept = append(kept, n)
		}
	}
	removed := len(e.notifications) - len(kept)
	e.notifications = kept

	for key := range e.states {
		if key.DeviceID == deviceID {
			delete(e.states, key)
		}
	}
	delete(e.lastSeen, deviceID)

	if _, ok := e.findLocked(e.activeID); !ok {
		e.activeID = ""
		e.showNextLocked()
	}

	e.log.Info("Reset device %s: removed %d notifications", deviceID, removed)
	e.persistLocked()
}
