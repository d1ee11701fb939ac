package service

import (
	"fmt"
	"time"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/metrics"
	"PintellAPI/internal/models"
	"PintellAPI/internal/websocket"
)

// Broadcaster pushes a message to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) bool
}

// JSONPublisher publishes a JSON document on an MQTT topic.
type JSONPublisher interface {
	IsConnected() bool
	PublishJSON(topic string, data interface{}) error
}

// NotificationDispatcher fans fired notifications out to WebSocket clients
// and, when connected, to the device's MQTT notification topic. It
// implements notify.Publisher.
type NotificationDispatcher struct {
	hub         Broadcaster
	mqtt        JSONPublisher
	topicFormat string
	log         *logger.Logger
}

func NewNotificationDispatcher(hub Broadcaster, mqtt JSONPublisher, topicFormat string, log *logger.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		hub:         hub,
		mqtt:        mqtt,
		topicFormat: topicFormat,
		log:         log,
	}
}

// Publish runs under the engine lock, so MQTT delivery happens off the
// caller's goroutine.
func (d *NotificationDispatcher) Publish(n models.Notification) {
	metrics.NotificationsFired.WithLabelValues(string(n.Type)).Inc()

	if d.hub != nil {
		d.hub.Broadcast(websocket.MessageNotification, n)
	}

	if d.mqtt != nil && d.topicFormat != "" && d.mqtt.IsConnected() {
		topic := fmt.Sprintf(d.topicFormat, n.DeviceID)
		go func() {
			if err := d.mqtt.PublishJSON(topic, n); err != nil {
				d.log.Warn("Failed to publish notification %s: %v", n.ID, err)
			}
		}()
	}
}

// SendTest pushes an ephemeral notification to WebSocket clients without
// touching the notification log.
func (d *NotificationDispatcher) SendTest() models.Notification {
	n := models.Notification{
		ID:          "test-" + time.Now().UTC().Format("20060102T150405"),
		Title:       "Test Notification",
		Description: "This is an ephemeral test notification (not saved to the log).",
		Timestamp:   time.Now(),
		Type:        models.NotificationMoisture,
		DeviceID:    "TEST",
		Unread:      true,
	}
	if d.hub != nil {
		d.hub.Broadcast(websocket.MessageNotification, n)
	}
	d.log.Info("Ephemeral test notification broadcasted to WebSocket hub.")
	return n
}
