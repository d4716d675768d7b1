package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type TaskHandler struct {
	TaskUseCase *usecase.TaskUseCase
}

func NewTaskHandler(uc *usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{TaskUseCase: uc}
}

// List handles GET /api/tasks?status=&assignedTo=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.TaskUseCase.List(r.Context(), usecase.ListTasksInput{
		Status:     q.Get("status"),
		AssignedTo: q.Get("assignedTo"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: tasks})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.TaskUseCase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: task})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateTaskInput
	if !decodeJSON(w, r, &input) {
		return
	}

	task, err := h.TaskUseCase.Create(r.Context(), middleware.UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: task, Message: "Task created successfully"})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateTaskInput
	if !decodeJSON(w, r, &input) {
		return
	}

	task, err := h.TaskUseCase.Update(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: task, Message: "Task updated successfully"})
}

// UpdateStatus handles PATCH /api/tasks/{id}/status. Only the assignee may call it.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateTaskStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}

	task, err := h.TaskUseCase.UpdateStatus(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: task, Message: "Task status updated successfully"})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskUseCase.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Task deleted successfully"})
}
