package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/models"

	"github.com/gorilla/mux"
)

type ISettingsService interface {
	Get(ctx context.Context, username string) (*models.NotificationSettings, error)
	Update(ctx context.Context, username string, settings *models.NotificationSettings) error
}

type SettingsHandler struct {
	settings ISettingsService
	log      *logger.Logger
}

func NewSettingsHandler(settings ISettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{username}/notification-settings", h.Get).Methods("GET")
	r.HandleFunc("/users/{username}/notification-settings", h.Update).Methods("PUT")
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	settings, err := h.settings.Get(r.Context(), username)
	if err != nil {
		h.log.Error("Failed to get settings for %s: %v", username, err)
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var settings models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settings.Update(r.Context(), username, &settings); err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Failed to update settings for %s: %v", username, err)
		}
		respondError(w, status, err.Error())
		return
	}

	h.log.Info("Notification settings updated for %s", username)
	respondJSON(w, http.StatusOK, settings)
}
