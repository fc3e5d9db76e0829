package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/service"
)

// TaskHandler serves tasks with their checklist items and comments.
type TaskHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewTaskHandler(svc *service.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	deadline, err := queryTime(r, "deadline")
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	tasks, err := h.svc.ListTasks(r.Context(), userID, model.TaskFilter{
		FamilyID:       r.URL.Query().Get("familyId"),
		Completed:      queryBool(r, "completed"),
		DeadlineBefore: deadline,
	})
	respond(w, r, h.logger, http.StatusOK, tasks, err)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), userID, f)
	respond(w, r, h.logger, http.StatusCreated, task, err)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	task, err := h.svc.GetTask(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, task, err)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), userID, r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, task, err)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteTask(r.Context(), userID, r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

func (h *TaskHandler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListChecklist(r.Context(), userID, r.PathValue("taskId"))
	respond(w, r, h.logger, http.StatusOK, items, err)
}

func (h *TaskHandler) CreateChecklistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	item, err := h.svc.CreateChecklistItem(r.Context(), userID, r.PathValue("taskId"), f)
	respond(w, r, h.logger, http.StatusCreated, item, err)
}

func (h *TaskHandler) GetChecklistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetChecklistItem(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, item, err)
}

func (h *TaskHandler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	item, err := h.svc.UpdateChecklistItem(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, item, err)
}

func (h *TaskHandler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteChecklistItem(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}

// ListComments handles GET /api/tasks/{taskId}/comments?page=&limit=
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListComments(r.Context(), userID, r.PathValue("taskId"), queryInt(r, "page"), queryInt(r, "limit"))
	respond(w, r, h.logger, http.StatusOK, page, err)
}

func (h *TaskHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	comment, err := h.svc.CreateComment(r.Context(), userID, r.PathValue("taskId"), f)
	respond(w, r, h.logger, http.StatusCreated, comment, err)
}

func (h *TaskHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	comment, err := h.svc.GetComment(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, comment, err)
}

func (h *TaskHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, ok := body(w, r)
	if !ok {
		return
	}
	comment, err := h.svc.UpdateComment(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"), f)
	respond(w, r, h.logger, http.StatusOK, comment, err)
}

func (h *TaskHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteComment(r.Context(), userID, r.PathValue("taskId"), r.PathValue("id"))
	respond(w, r, h.logger, http.StatusOK, msg, err)
}
