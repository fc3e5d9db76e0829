package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/service"
)

// ReminderHandler serves reminders and the in-app notifications they
// produce.
type ReminderHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewReminderHandler(svc *service.Service, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{svc: svc, logger: logger}
}

// List handles GET /api/reminders?taskId=&eventId=&upcoming=&sent=
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	reminders, err := h.svc.ListReminders(r.Context(), userID, model.ReminderFilter{
		TaskID:   q.Get("taskId"),
		EventID:  q.Get("eventId"),
		Upcoming: q.Get("upcoming") == "true",
		Sent:     queryBool(r, "sent"),
	})
	respond(w, r, h.logger, http.StatusOK, reminders, err)
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	reminder, err := h.svc.CreateReminder(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, reminder, err)
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	reminder, err := h.svc.GetReminder(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, reminder, err)
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	reminder, err := h.svc.UpdateReminder(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, reminder, err)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteReminder(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

// ListNotifications handles GET /api/notifications?unread=
func (h *ReminderHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	notifications, err := h.svc.ListNotifications(r.Context(), userID, r.URL.Query().Get("unread") == "true")
	respond(w, r, h.logger, http.StatusOK, notifications, err)
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *ReminderHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.MarkNotificationRead(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}
