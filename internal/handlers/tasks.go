package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"chrona/internal/models"
	"chrona/internal/services"
)

type TaskHandler struct {
	resource
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{resource: resource{name: "Task", log: log}, tasks: tasks}
}

// List filters by status, priority, category, dueDate (YYYY-MM-DD), tag and
// a free-text search.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TaskFilter{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
	}
	if due := q.Get("dueDate"); due != "" {
		day, err := h.tasks.ParseDueDay(due)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.DueDay = day
	}
	tasks, err := h.tasks.List(r.Context(), ownerID(r), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Get(r.Context(), ownerID(r), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.tasks.Create(r.Context(), ownerID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.TaskUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.tasks.Update(r.Context(), ownerID(r), idParam(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete removes the task together with its subtasks.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ids, err := h.tasks.Delete(r.Context(), ownerID(r), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskDeleteResponse{Message: "Task deleted successfully", DeletedIDs: ids})
}

func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.tasks.BulkUpdate(r.Context(), ownerID(r), req.TaskIDs, req.Updates)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkTaskResponse{
		Message:       fmt.Sprintf("%d tasks updated successfully", n),
		ModifiedCount: n,
	})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tasks.Stats(r.Context(), ownerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *TaskHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	groups, err := h.tasks.ByCategory(r.Context(), ownerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
