package handler

import (
	"context"
	"net/http"
	"time"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/models"

	"github.com/gorilla/mux"
)

// HealthCheck reports whether a dependency is usable. A nil check means the
// dependency is not configured and counts as healthy.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	database HealthCheck
	mqtt     HealthCheck
	store    HealthCheck
	log      *logger.Logger
}

func NewHealthHandler(database, mqtt, store HealthCheck, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		mqtt:     mqtt,
		store:    store,
		log:      log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func run(ctx context.Context, check HealthCheck) error {
	if check == nil {
		return nil
	}
	return check(ctx)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	response.Services.Database = run(ctx, h.database) == nil
	response.Services.MQTT = run(ctx, h.mqtt) == nil
	response.Services.Store = run(ctx, h.store) == nil

	statusCode := http.StatusOK
	if !response.Services.Database {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if !response.Services.MQTT || !response.Services.Store {
		response.Status = "degraded"
	}

	if response.Status != "healthy" {
		h.log.Warn("Health check %s - DB: %v, MQTT: %v, Store: %v",
			response.Status, response.Services.Database, response.Services.MQTT, response.Services.Store)
	}

	respondJSON(w, statusCode, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := run(ctx, h.database); err != nil {
		h.log.Warn("Readiness check failed - DB error: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
