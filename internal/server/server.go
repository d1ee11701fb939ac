package server

import (
	"context"
	"fmt"
	"net/http"

	"PintellAPI/internal/config"
	"PintellAPI/internal/handler"
	"PintellAPI/internal/logger"
	"PintellAPI/internal/middleware"
	"PintellAPI/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	cfg        *config.Config
	log        *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Server {
	router := mux.NewRouter()

	return &Server{
		router: router,
		cfg:    cfg,
		log:    log,
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}
}

// Handlers groups everything mounted on the router.
type Handlers struct {
	Notifications *handler.NotificationHandler
	Devices       *handler.DeviceHandler
	Settings      *handler.SettingsHandler
	Health        *handler.HealthHandler
	Hub           *websocket.Hub
}

// RegisterHandlers mounts the REST API under /api/v1 with the middleware
// chain. Health, metrics and the WebSocket endpoint sit on the root router,
// outside the rate limiter.
func (s *Server) RegisterHandlers(h Handlers) {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.Use(middleware.Recovery(s.log))
	api.Use(middleware.RequestLogger(s.log))
	api.Use(middleware.Metrics)
	api.Use(middleware.CORS(s.cfg.Security.CORSAllowedOrigins, s.cfg.Security.CORSAllowedMethods))

	if s.cfg.Security.EnableRateLimit {
		api.Use(middleware.RateLimit(s.cfg.Security.RateLimitPerMinute))
	}

	h.Notifications.RegisterRoutes(api)
	h.Devices.RegisterRoutes(api)
	h.Settings.RegisterRoutes(api)
	h.Health.RegisterRoutes(s.router)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if h.Hub != nil {
		wsLog := s.log.Named("ws")
		s.router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWs(h.Hub, w, r, wsLog)
		})
	}

	s.log.Info("All handlers registered")
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
