package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:        ServerConfig{Port: 8080},
		Database:      DatabaseConfig{Port: 5432, Password: "secret"},
		MQTT:          MQTTConfig{Enabled: true, Port: 1883},
		Poller:        PollerConfig{Interval: time.Minute},
		Notifications: NotificationConfig{Retention: 72 * time.Hour},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"bad mqtt port", func(c *Config) { c.MQTT.Port = 70000 }, "MQTT_PORT"},
		{"mqtt disabled ignores port", func(c *Config) { c.MQTT.Enabled = false; c.MQTT.Port = 0 }, ""},
		{"poll too fast", func(c *Config) { c.Poller.Interval = 10 * time.Millisecond }, "POLL_INTERVAL"},
		{"no retention", func(c *Config) { c.Notifications.Retention = 0 }, "NOTIFICATION_RETENTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PINTELL_TEST_INT", "42")
	t.Setenv("PINTELL_TEST_BAD_INT", "forty")
	t.Setenv("PINTELL_TEST_BOOL", "false")
	t.Setenv("PINTELL_TEST_DURATION", "90s")

	if got := getEnvAsInt("PINTELL_TEST_INT", 1); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := getEnvAsInt("PINTELL_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
	if got := getEnvAsBool("PINTELL_TEST_BOOL", true); got {
		t.Error("Expected false")
	}
	if got := getEnvAsDuration("PINTELL_TEST_DURATION", "1s"); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
	if got := getEnvAsDuration("PINTELL_TEST_UNSET", "60s"); got != time.Minute {
		t.Errorf("Expected default 60s, got %v", got)
	}
}

func TestLoadPollerAndRedisDefaults(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("REDIS_STATE_KEY", "")

	if got := loadPollerConfig().Interval; got != time.Minute {
		t.Errorf("Expected default poll interval 60s, got %v", got)
	}
	if got := loadRedisConfig().Key; got != "pintell:notifications:state" {
		t.Errorf("Unexpected redis key %q", got)
	}
	if got := loadNotificationConfig().Retention; got != 72*time.Hour {
		t.Errorf("Expected 72h retention, got %v", got)
	}
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "pintell", SSLMode: "disable"}
	if got, want := db.DSN(), "host=db port=5433 user=u password=p dbname=pintell sslmode=disable"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	mq := MQTTConfig{Broker: "broker", Port: 1883}
	if got := mq.BrokerURL(); got != "tcp://broker:1883" {
		t.Errorf("Expected tcp://broker:1883, got %q", got)
	}
}
