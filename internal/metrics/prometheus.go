// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pintell_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pintell_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"route", "method"},
	)

	NotificationsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pintell_notifications_fired_total",
			Help: "Notifications fired by the engine",
		},
		[]string{"type"},
	)

	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pintell_poll_cycles_total",
			Help: "Completed poll cycles by result",
		},
		[]string{"result"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pintell_poll_duration_seconds",
			Help:    "Duration of a full poll cycle",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	DevicesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pintell_devices_evaluated_total",
			Help: "Device evaluations by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	MQTTMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pintell_mqtt_messages_total",
			Help: "MQTT reading messages by result",
		},
		[]string{"result"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pintell_websocket_clients",
			Help: "Connected WebSocket clients",
		},
	)
)
