package http

import (
	"net/http"

	serviceErrors "github.com/Shishir-Kc/ThE-lIsT/internal/errors"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (h *HTTPHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, task)
}

func (h *HTTPHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tasks)
}

func (h *HTTPHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, serviceErrors.ErrInvalidTaskID.WithCause(err))
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, task)
}

func (h *HTTPHandlers) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleCompletionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.ToggleCompletion(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, task)
}

func (h *HTTPHandlers) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.UpdatePriority(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, task)
}

func (h *HTTPHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.tasks.DeleteTask(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *HTTPHandlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	views, err := h.tasks.ListActivity(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, views)
}
