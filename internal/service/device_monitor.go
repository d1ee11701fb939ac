package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"PintellAPI/internal/analysis"
	"PintellAPI/internal/logger"
	"PintellAPI/internal/metrics"
	"PintellAPI/internal/models"
	"PintellAPI/internal/mqtt"
)

const (
	TriggerPoll = "poll"
	TriggerMQTT = "mqtt"
)

// CycleStats summarises one pass over all devices.
type CycleStats struct {
	Devices   int
	Evaluated int
	Failed    int
}

// DeviceMonitor turns device state into notification engine updates.
type DeviceMonitor struct {
	devices       IDeviceRepository
	datapoints    IDatapointRepository
	engine        INotificationEngine
	log           *logger.Logger
	readingTopic  string
	deviceTimeout time.Duration
}

func NewDeviceMonitor(
	devices IDeviceRepository,
	datapoints IDatapointRepository,
	engine INotificationEngine,
	readingTopic string,
	deviceTimeout time.Duration,
	log *logger.Logger,
) *DeviceMonitor {
	if deviceTimeout <= 0 {
		deviceTimeout = 10 * time.Second
	}
	return &DeviceMonitor{
		devices:       devices,
		datapoints:    datapoints,
		engine:        engine,
		log:           log,
		readingTopic:  readingTopic,
		deviceTimeout: deviceTimeout,
	}
}

// Evaluate feeds the device's battery level and the moisture percentage of
// its current session to the engine. A session without readings has no
// moisture percentage and is skipped.
func (m *DeviceMonitor) Evaluate(ctx context.Context, device models.Device) error {
	deviceID := strconv.Itoa(device.ID)

	if device.Battery != nil {
		m.engine.HandleBatteryUpdate(device.Owner, deviceID, *device.Battery)
	}

	session, err := m.datapoints.CurrentSession(ctx, device.ID)
	if err != nil {
		return fmt.Errorf("failed to load session of device %d: %w", device.ID, err)
	}
	if len(session) == 0 {
		m.log.Debug("Device %d has no readings in its current session", device.ID)
		return nil
	}

	pct := analysis.MoisturePercentage(session)
	m.engine.HandleMoistureUpdate(device.Owner, deviceID, pct)
	m.log.Debug("Evaluated device %d: battery=%v moisture=%d%%", device.ID, batteryString(device.Battery), pct)
	return nil
}

// RunCycle evaluates every owned device once. A device whose data cannot be
// fetched is skipped until the next cycle.
func (m *DeviceMonitor) RunCycle(ctx context.Context) (CycleStats, error) {
	devices, err := m.devices.ListWithOwners(ctx)
	if err != nil {
		return CycleStats{}, fmt.Errorf("failed to list devices: %w", err)
	}

	stats := CycleStats{Devices: len(devices)}
	for _, device := range devices {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		devCtx, cancel := context.WithTimeout(ctx, m.deviceTimeout)
		err := m.Evaluate(devCtx, device)
		cancel()

		if err != nil {
			stats.Failed++
			metrics.DevicesEvaluated.WithLabelValues(TriggerPoll, "error").Inc()
			m.log.Warn("Skipping device %d this cycle: %v", device.ID, err)
			continue
		}
		stats.Evaluated++
		metrics.DevicesEvaluated.WithLabelValues(TriggerPoll, "ok").Inc()
	}
	return stats, nil
}

// HandleReading re-evaluates the device named in a reading topic straight
// away instead of waiting for the next poll.
func (m *DeviceMonitor) HandleReading(topic string, payload []byte) error {
	segment, ok := mqtt.TopicSegment(m.readingTopic, topic)
	if !ok {
		metrics.MQTTMessages.WithLabelValues("ignored").Inc()
		return fmt.Errorf("topic %s does not match %s", topic, m.readingTopic)
	}
	deviceID, err := strconv.Atoi(segment)
	if err != nil {
		metrics.MQTTMessages.WithLabelValues("invalid").Inc()
		return fmt.Errorf("invalid device id %q in topic %s", segment, topic)
	}

	var reading models.ReadingMessage
	if err := json.Unmarshal(payload, &reading); err != nil {
		metrics.MQTTMessages.WithLabelValues("invalid").Inc()
		return fmt.Errorf("failed to unmarshal reading: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.deviceTimeout)
	defer cancel()

	device, err := m.devices.GetByID(ctx, deviceID)
	if err != nil {
		metrics.MQTTMessages.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load device %d: %w", deviceID, err)
	}
	if reading.Battery != nil {
		device.Battery = reading.Battery
	}

	if err := m.Evaluate(ctx, *device); err != nil {
		metrics.MQTTMessages.WithLabelValues("error").Inc()
		metrics.DevicesEvaluated.WithLabelValues(TriggerMQTT, "error").Inc()
		return err
	}
	metrics.MQTTMessages.WithLabelValues("ok").Inc()
	metrics.DevicesEvaluated.WithLabelValues(TriggerMQTT, "ok").Inc()
	return nil
}

// ResetDevice drops all notification state held for a device.
func (m *DeviceMonitor) ResetDevice(deviceID int) {
	m.engine.ResetDevice(strconv.Itoa(deviceID))
}

func batteryString(b *int) string {
	if b == nil {
		return "n/a"
	}
	return strconv.Itoa(*b) + "%"
}
