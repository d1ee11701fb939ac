package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PintellAPI/internal/cache"
	"PintellAPI/internal/config"
	"PintellAPI/internal/database"
	"PintellAPI/internal/handler"
	"PintellAPI/internal/logger"
	"PintellAPI/internal/mqtt"
	"PintellAPI/internal/notify"
	"PintellAPI/internal/repository"
	"PintellAPI/internal/server"
	"PintellAPI/internal/service"
	"PintellAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Pintell notification service")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare schema: %v", err)
	}
	log.Info("Database connected successfully")

	// 4. Repositories and settings
	deviceRepo := repository.NewDeviceRepository(db.DB)
	datapointRepo := repository.NewDatapointRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Notifications.SettingsLookup)

	// 5. Notification state store
	var store notify.Store = notify.NewMemoryStore()
	var storeHealth handler.HealthCheck
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			log.Warn("Redis unavailable, notification state will not survive restarts: %v", err)
		} else {
			defer redisStore.Close()
			store = redisStore
			storeHealth = redisStore.Ping
			log.Info("Notification state persisted in Redis at %s", cfg.Redis.Addr)
		}
	}

	// 6. WebSocket hub
	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	// 7. MQTT Client
	var mqttClient *mqtt.Client
	var publisher service.JSONPublisher
	var mqttHealth handler.HealthCheck
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.NewClient(mqtt.ClientConfig{
			MQTT:   &cfg.MQTT,
			Logger: log.Named("mqtt"),
		})
		if err != nil {
			log.Fatal("Failed to create MQTT client: %v", err)
		}
		if err := mqttClient.Connect(); err != nil {
			log.Fatal("Failed to connect to MQTT broker: %v", err)
		}
		defer func() {
			if err := mqttClient.Disconnect(); err != nil {
				log.Error("Failed to disconnect MQTT: %v", err)
			}
		}()
		publisher = mqttClient
		mqttHealth = func(ctx context.Context) error {
			_, err := mqttClient.Health(ctx)
			return err
		}
	}

	// 8. Notification engine
	dispatcher := service.NewNotificationDispatcher(hub, publisher, cfg.MQTT.NotificationTopic, log.Named("dispatch"))
	engine := notify.NewEngine(settingsService,
		notify.WithStore(store),
		notify.WithPublisher(dispatcher),
		notify.WithRetention(cfg.Notifications.Retention),
		notify.WithLogger(log.Named("notify")),
	)
	if err := engine.Restore(); err != nil {
		log.Warn("Starting with empty notification state: %v", err)
	}

	// 9. Device monitoring
	monitor := service.NewDeviceMonitor(deviceRepo, datapointRepo, engine, cfg.MQTT.ReadingTopic, cfg.Poller.DeviceTimeout, log.Named("monitor"))
	if mqttClient != nil {
		if err := mqttClient.Subscribe(cfg.MQTT.ReadingTopic, monitor.HandleReading); err != nil {
			log.Fatal("Failed to subscribe to reading topic: %v", err)
		}
		log.Info("MQTT subscriptions active")
	}

	poller := service.NewPoller(monitor, cfg.Poller.Interval, log.Named("poller"))
	if err := poller.Start(ctx); err != nil {
		log.Fatal("Failed to start poller: %v", err)
	}

	// 10. Handlers
	sessionService := service.NewSessionService(deviceRepo, datapointRepo)
	reportService := service.NewReportService(engine)

	srv := server.New(cfg, log)
	srv.RegisterHandlers(server.Handlers{
		Notifications: handler.NewNotificationHandler(engine, reportService, dispatcher, log),
		Devices:       handler.NewDeviceHandler(sessionService, monitor, log),
		Settings:      handler.NewSettingsHandler(settingsService, log),
		Health:        handler.NewHealthHandler(db.Health, mqttHealth, storeHealth, log),
		Hub:           hub,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	stop()
	waitFor(poller.Wait, 5*time.Second, log)

	log.Info("Shutdown complete")
}

// waitFor gives a background worker a bounded amount of time to finish.
func waitFor(wait func(), timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("Timed out waiting for background workers")
	}
}
