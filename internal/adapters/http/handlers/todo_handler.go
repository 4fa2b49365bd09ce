package handlers

import (
	"net/http"

	httpdto "github.com/planfold/planfold/internal/adapters/http/dto"
	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/ports"
)

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	svc ports.TodoService
}

// NewTodoHandler creates a new TodoHandler with the given service port.
func NewTodoHandler(svc ports.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// ListProjectTodos handles GET /api/v1/projects/{projectId}/todos.
func (h *TodoHandler) ListProjectTodos(w http.ResponseWriter, r *http.Request) {
	projectID, err := urlParam(r, "projectId")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	todos, err := h.svc.GetProjectTodos(r.Context(), projectID)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

// CreateTodo handles POST /api/v1/todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.svc.CreateTodo(r.Context(), req)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetTodo handles GET /api/v1/todos/{id}.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	t, err := h.svc.GetTodo(r.Context(), id)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// UpdateTodo handles PATCH /api/v1/todos/{id}.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateTodo(r.Context(), id, req)
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteTodo handles DELETE /api/v1/todos/{id}.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.DeleteTodo(r.Context(), id); err != nil {
		httpdto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
