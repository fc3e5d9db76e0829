package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homebase/internal/service"
)

// FamilyHandler serves families, their members and their exports.
type FamilyHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewFamilyHandler(svc *service.Service, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{svc: svc, logger: logger}
}

func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	families, err := h.svc.ListFamilies(r.Context(), userID)
	respond(w, r, h.logger, http.StatusOK, families, err)
}

func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	family, err := h.svc.CreateFamily(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, family, err)
}

func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	family, err := h.svc.GetFamily(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, family, err)
}

func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	family, err := h.svc.UpdateFamily(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, family, err)
}

func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteFamily(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(r.Context(), userID, r.PathValue("familyId"))
	respond(w, r, h.logger, http.StatusOK, members, err)
}

func (h *FamilyHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	member, err := h.svc.CreateMember(r.Context(), userID, r.PathValue("familyId"), f)
	respond(w, r, h.logger, http.StatusCreated, member, err)
}

func (h *FamilyHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	member, err := h.svc.GetMember(r.Context(), userID, r.PathValue("familyId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, member, err)
}

func (h *FamilyHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	member, err := h.svc.UpdateMember(r.Context(), userID, r.PathValue("familyId"), r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, member, err)
}

func (h *FamilyHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteMember(r.Context(), userID, r.PathValue("familyId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

func (h *FamilyHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	exports, err := h.svc.ListExports(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, exports, err)
}

// CreateExport handles POST /api/families/{id}/exports
func (h *FamilyHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	export, err := h.svc.CreateExport(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusCreated, export, err)
}
