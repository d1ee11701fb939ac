package mqtt

import (
	"context"
	"errors"
	"testing"

	"PintellAPI/internal/config"
	"PintellAPI/internal/logger"
)

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"pintell/devices/+/reading", "pintell/devices/7/reading", true},
		{"pintell/devices/+/reading", "pintell/devices/7/status", false},
		{"pintell/devices/+/reading", "pintell/devices/7/reading/extra", false},
		{"pintell/devices/+/reading", "pintell/devices", false},
		{"pintell/#", "pintell/devices/7/reading", true},
		{"pintell/devices/7/reading", "pintell/devices/7/reading", true},
	}

	for _, tt := range tests {
		if got := MatchTopic(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("MatchTopic(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestTopicSegment(t *testing.T) {
	id, ok := TopicSegment("pintell/devices/+/reading", "pintell/devices/42/reading")
	if !ok || id != "42" {
		t.Errorf("Expected 42, got %q (ok=%v)", id, ok)
	}
	if _, ok := TopicSegment("pintell/devices/+/reading", "other/42/reading"); ok {
		t.Error("Expected no segment for a non-matching topic")
	}
}

func TestHandleMessageDispatch(t *testing.T) {
	c, err := NewClient(ClientConfig{
		MQTT:   &config.MQTTConfig{Broker: "localhost", Port: 1883, ClientID: "test"},
		Logger: logger.Discard(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	var gotTopic string
	c.handlers["pintell/devices/+/reading"] = func(topic string, payload []byte) error {
		gotTopic = topic
		return errors.New("logged, not returned")
	}

	c.handleMessage("pintell/devices/3/reading", []byte(`{}`))
	if gotTopic != "pintell/devices/3/reading" {
		t.Errorf("Expected handler to run, got topic %q", gotTopic)
	}

	gotTopic = ""
	c.handleMessage("pintell/other", nil)
	if gotTopic != "" {
		t.Error("Expected no handler for unrelated topic")
	}

	if c.IsConnected() {
		t.Error("Expected new client to be disconnected")
	}
	if _, err := c.Health(context.Background()); err == nil {
		t.Error("Expected health error while disconnected")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{MQTT: &config.MQTTConfig{}}); err == nil {
		t.Error("Expected error without logger")
	}
	if _, err := NewClient(ClientConfig{Logger: logger.Discard()}); err == nil {
		t.Error("Expected error without mqtt config")
	}
}
