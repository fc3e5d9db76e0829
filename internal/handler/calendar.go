package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/homebase/internal/ical"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/service"
)

// CalendarHandler serves calendars, events and locations.
type CalendarHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewCalendarHandler(svc *service.Service, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{svc: svc, logger: logger}
}

func (h *CalendarHandler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	calendars, err := h.svc.ListCalendars(r.Context(), userID, r.URL.Query().Get("familyId"))
	respond(w, r, h.logger, http.StatusOK, calendars, err)
}

func (h *CalendarHandler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	calendar, err := h.svc.CreateCalendar(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, calendar, err)
}

func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	calendar, err := h.svc.GetCalendar(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, calendar, err)
}

func (h *CalendarHandler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	calendar, err := h.svc.UpdateCalendar(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, calendar, err)
}

func (h *CalendarHandler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteCalendar(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

// ExportICS handles GET /api/calendars/{id}/ics
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	cal, events, err := h.svc.CalendarEvents(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := ical.Write(&buf, cal, events, time.Now().UTC()); err != nil {
		h.logger.Error("encode calendar", "error", err, "calendar_id", cal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", ical.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cal.ID+".ics"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	start, err := queryTime(r, "startDate")
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	end, err := queryTime(r, "endDate")
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	events, err := h.svc.ListEvents(r.Context(), userID, model.EventFilter{
		FamilyID:  r.URL.Query().Get("familyId"),
		StartDate: start,
		EndDate:   end,
		Completed: queryBool(r, "completed"),
	})
	respond(w, r, h.logger, http.StatusOK, events, err)
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, event, err)
}

func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	event, err := h.svc.GetEvent(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, event, err)
}

func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	event, err := h.svc.UpdateEvent(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, event, err)
}

func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteEvent(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

func (h *CalendarHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	locations, err := h.svc.ListLocations(r.Context(), userID, r.URL.Query().Get("familyId"))
	respond(w, r, h.logger, http.StatusOK, locations, err)
}

func (h *CalendarHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	location, err := h.svc.CreateLocation(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, location, err)
}

func (h *CalendarHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	location, err := h.svc.GetLocation(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, location, err)
}

func (h *CalendarHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	location, err := h.svc.UpdateLocation(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, location, err)
}

func (h *CalendarHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteLocation(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}
