package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shamba-labs/mazao/internal/store"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.deps.Tasks.ListTasks(r.Context())
	if err != nil {
		s.deps.Logger.Error("list tasks failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Something went wrong!",
		})
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var task store.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation Error",
			"details": "invalid request body",
		})
		return
	}
	if task.Name == "" || task.DueDate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation Error",
			"details": "name and dueDate are required",
		})
		return
	}

	saved, err := s.deps.Tasks.CreateTask(r.Context(), task)
	if err != nil {
		s.deps.Logger.Error("create task failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Something went wrong!",
		})
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid task ID format",
		})
		return
	}

	var task store.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation Error",
			"details": "invalid request body",
		})
		return
	}

	updated, err := s.deps.Tasks.UpdateTask(r.Context(), id, task)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Task not found",
		})
		return
	}
	if err != nil {
		s.deps.Logger.Error("update task failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Something went wrong!",
		})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid task ID format",
		})
		return
	}

	err = s.deps.Tasks.DeleteTask(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Task not found",
		})
		return
	}
	if err != nil {
		s.deps.Logger.Error("delete task failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Something went wrong!",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
