package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homebase/internal/service"
)

// VAPIDKeySource exposes the server's public application key.
type VAPIDKeySource interface {
	Configured() bool
	VAPIDPublicKey() string
}

type PushHandler struct {
	svc    *service.Service
	keys   VAPIDKeySource
	logger *slog.Logger
}

func NewPushHandler(svc *service.Service, keys VAPIDKeySource, logger *slog.Logger) *PushHandler {
	return &PushHandler{svc: svc, keys: keys, logger: logger}
}

// Subscribe handles POST /api/push/subscriptions
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	sub, err := h.svc.Subscribe(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, sub, err)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.Unsubscribe(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	subs, err := h.svc.ListSubscriptions(r.Context(), userID)
	respond(w, r, h.logger, http.StatusOK, subs, err)
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil || !h.keys.Configured() {
		writeError(w, http.StatusNotFound, "Push notifications are not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.keys.VAPIDPublicKey()})
}
