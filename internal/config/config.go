package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"PintellAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	MQTT          MQTTConfig
	Redis         RedisConfig
	Poller        PollerConfig
	Notifications NotificationConfig
	Security      SecurityConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type MQTTConfig struct {
	Enabled      bool
	Broker       string
	Port         int
	ClientID     string
	Username     string
	Password     string
	ReadingTopic string
	// NotificationTopic is a format string taking the device id.
	NotificationTopic string
	RetainMessages    bool
	QoS               byte
	KeepAlive         time.Duration
	ConnectTimeout    time.Duration
	AutoReconnect     bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

type PollerConfig struct {
	Interval      time.Duration
	DeviceTimeout time.Duration
}

type NotificationConfig struct {
	Retention      time.Duration
	SettingsLookup time.Duration
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level     logger.Level
	Mode      logger.Mode
	FilePath  string
	UseColors bool
}

var requiredEnvVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	if err := validateRequired(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		MQTT:          loadMQTTConfig(),
		Redis:         loadRedisConfig(),
		Poller:        loadPollerConfig(),
		Notifications: loadNotificationConfig(),
		Security:      loadSecurityConfig(),
		Logging:       loadLoggingConfig(),
	}

	return cfg, nil
}

func validateRequired() error {
	var missing []string

	for _, key := range requiredEnvVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "pintell"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "pintell"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Enabled:           getEnvAsBool("MQTT_ENABLED", true),
		Broker:            getEnv("MQTT_BROKER", "localhost"),
		Port:              getEnvAsInt("MQTT_PORT", 1883),
		ClientID:          getEnv("MQTT_CLIENT_ID", "pintell-backend"),
		Username:          getEnv("MQTT_USERNAME", ""),
		Password:          getEnv("MQTT_PASSWORD", ""),
		ReadingTopic:      getEnv("MQTT_READING_TOPIC", "pintell/devices/+/reading"),
		NotificationTopic: getEnv("MQTT_NOTIFICATION_TOPIC", "pintell/devices/%s/notifications"),
		RetainMessages:    getEnvAsBool("MQTT_RETAIN", false),
		QoS:               byte(getEnvAsInt("MQTT_QOS", 1)),
		KeepAlive:         getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
		ConnectTimeout:    getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
		AutoReconnect:     getEnvAsBool("MQTT_AUTO_RECONNECT", true),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		Key:      getEnv("REDIS_STATE_KEY", "pintell:notifications:state"),
		Timeout:  getEnvAsDuration("REDIS_TIMEOUT", "2s"),
	}
}

func loadPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:      getEnvAsDuration("POLL_INTERVAL", "60s"),
		DeviceTimeout: getEnvAsDuration("POLL_DEVICE_TIMEOUT", "10s"),
	}
}

func loadNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Retention:      getEnvAsDuration("NOTIFICATION_RETENTION", "72h"),
		SettingsLookup: getEnvAsDuration("SETTINGS_LOOKUP_TIMEOUT", "3s"),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		CORSAllowedOrigins: strings.Split(origins, ","),
		CORSAllowedMethods: strings.Split(methods, ","),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		Mode:      logger.ParseMode(getEnv("LOG_MODE", "normal")),
		FilePath:  getEnv("LOG_FILE_PATH", ""),
		UseColors: getEnvAsBool("LOG_USE_COLORS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Database,
		d.SSLMode,
	)
}

func (m MQTTConfig) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Broker, m.Port)
}

func (c *Config) Validate() error {
	var errors []string

	if c.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}

	if c.MQTT.Enabled && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if c.Poller.Interval < time.Second {
		errors = append(errors, "POLL_INTERVAL must be at least 1s")
	}

	if c.Notifications.Retention <= 0 {
		errors = append(errors, "NOTIFICATION_RETENTION must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║              Pintell - Configuration                     ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Database:        %s:%d/%s\n", c.Database.Host, c.Database.Port, c.Database.Database)
	if c.MQTT.Enabled {
		fmt.Printf("MQTT Broker:     %s:%d (%s)\n", c.MQTT.Broker, c.MQTT.Port, c.MQTT.ReadingTopic)
	} else {
		fmt.Println("MQTT Broker:     disabled")
	}
	if c.Redis.Enabled {
		fmt.Printf("Redis:           %s/%d\n", c.Redis.Addr, c.Redis.DB)
	} else {
		fmt.Println("Redis:           disabled (in-memory state)")
	}
	fmt.Printf("Poll Interval:   %v\n", c.Poller.Interval)
	fmt.Printf("Retention:       %v\n", c.Notifications.Retention)
	fmt.Println("──────────────────────────────────────────────────────────")
}
