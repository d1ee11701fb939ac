package handler

import (
	"context"
	"net/http"
	"strconv"

	"PintellAPI/internal/analysis"
	"PintellAPI/internal/logger"
	"PintellAPI/internal/models"

	"github.com/gorilla/mux"
)

type ISessionService interface {
	Regression(ctx context.Context, deviceID int) (*analysis.RegressionResult, error)
	Estimate(ctx context.Context, deviceID int, target float64) (*models.DryingEstimate, error)
}

type IDeviceResetter interface {
	ResetDevice(deviceID int)
}

type DeviceHandler struct {
	sessions ISessionService
	resetter IDeviceResetter
	log      *logger.Logger
}

func NewDeviceHandler(sessions ISessionService, resetter IDeviceResetter, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		sessions: sessions,
		resetter: resetter,
		log:      log,
	}
}

func (h *DeviceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/devices/{id}/regression", h.GetRegression).Methods("GET")
	r.HandleFunc("/devices/{id}/estimate", h.GetEstimate).Methods("GET")
	r.HandleFunc("/devices/{id}/notifications", h.ResetNotifications).Methods("DELETE")
}

func (h *DeviceHandler) GetRegression(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.sessions.Regression(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to fit regression for device %d: %v", id, err)
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *DeviceHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	target := 0.0
	if t := r.URL.Query().Get("target"); t != "" {
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid target value")
			return
		}
		target = parsed
	}

	estimate, err := h.sessions.Estimate(r.Context(), id, target)
	if err != nil {
		h.log.Error("Failed to estimate device %d: %v", id, err)
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, estimate)
}

func (h *DeviceHandler) ResetNotifications(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.resetter.ResetDevice(id)
	w.WriteHeader(http.StatusNoContent)
}
