package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/models"

	"github.com/gorilla/mux"
)

// INotificationService is the notification log and active slot as used by
// the UI.
type INotificationService interface {
	GetAllNotifications() []models.Notification
	UnreadCount() int
	GetActiveNotification() (models.ActiveNotification, bool)
	DismissActiveNotification(wasRead bool)
	ShowNextNotification()
	MarkNotificationAsRead(id string) bool
	MarkAllAsRead()
	DeleteAllNotifications()
}

type IReportService interface {
	WritePDF(w io.Writer) error
}

type ITestNotifier interface {
	SendTest() models.Notification
}

type NotificationHandler struct {
	notifications INotificationService
	reports       IReportService
	tester        ITestNotifier
	log           *logger.Logger
}

func NewNotificationHandler(notifications INotificationService, reports IReportService, tester ITestNotifier, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		reports:       reports,
		tester:        tester,
		log:           log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.List).Methods("GET")
	r.HandleFunc("/notifications", h.DeleteAll).Methods("DELETE")
	r.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods("GET")
	r.HandleFunc("/notifications/active", h.GetActive).Methods("GET")
	r.HandleFunc("/notifications/active/dismiss", h.DismissActive).Methods("POST")
	r.HandleFunc("/notifications/active/next", h.ShowNext).Methods("POST")
	r.HandleFunc("/notifications/read-all", h.MarkAllRead).Methods("PUT")
	r.HandleFunc("/notifications/report.pdf", h.Report).Methods("GET")
	r.HandleFunc("/notifications/test", h.SendTest).Methods("POST")
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods("PUT")
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notifications.GetAllNotifications())
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"unread": h.notifications.UnreadCount()})
}

func (h *NotificationHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	active, ok := h.notifications.GetActiveNotification()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, active)
}

func (h *NotificationHandler) DismissActive(w http.ResponseWriter, r *http.Request) {
	var req models.DismissRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	h.notifications.DismissActiveNotification(req.WasRead)
	h.respondActive(w)
}

func (h *NotificationHandler) ShowNext(w http.ResponseWriter, r *http.Request) {
	h.notifications.ShowNextNotification()
	h.respondActive(w)
}

func (h *NotificationHandler) respondActive(w http.ResponseWriter) {
	active, ok := h.notifications.GetActiveNotification()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, active)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.notifications.MarkNotificationAsRead(id) {
		respondError(w, http.StatusNotFound, "Notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.notifications.MarkAllAsRead()
	respondJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.notifications.DeleteAllNotifications()
	h.log.Info("Notification log cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Report(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reports.WritePDF(&buf); err != nil {
		h.log.Error("Failed to render notification report: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="notifications.pdf"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	n := h.tester.SendTest()
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Test notification dispatched to all connected clients",
		"id":      n.ID,
	})
}
