package http

import (
	"net/http"

	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/middleware"
)

// ListTasks handles GET /api/v1/tasks?status=pending|completed.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	tasks, err := h.tasks.List(r.Context(), u.ID, task.ParseFilter(r.URL.Query().Get("status")))
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	t, err := h.tasks.Get(r.Context(), urlParam(r, "id"), u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Create(r.Context(), u.ID, req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PATCH /api/v1/tasks/{id}.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[task.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Update(r.Context(), urlParam(r, "id"), u.ID, req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	t, already, err := h.tasks.Complete(r.Context(), urlParam(r, "id"), u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":              t,
		"already_completed": already,
	})
}

// DeleteTask handles DELETE /api/v1/tasks/{id}. The deleted task is returned
// as a final snapshot.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	t, err := h.tasks.Delete(r.Context(), urlParam(r, "id"), u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
