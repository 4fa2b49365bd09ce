package dto

import (
	"time"

	"github.com/planfold/planfold/internal/domain/todo"
)

// CreateTodoRequest carries the caller-supplied fields for creating a todo.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId"`
}

// ToNew converts the request into the entity factory input.
func (r CreateTodoRequest) ToNew() todo.New {
	return todo.New{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.ProjectID,
	}
}

// UpdateTodoRequest is the partial-update shape for a todo. Nil fields mean
// "do not change". Completed only decodes from a JSON boolean; any other
// type fails at the decoding boundary.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ToChanges converts the request into the entity's partial update type.
func (r UpdateTodoRequest) ToChanges() todo.Update {
	return todo.Update{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// TodoResponse is the response projection of a todo entity.
type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	ProjectID   string    `json:"projectId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromTodo projects an entity into the response shape.
func FromTodo(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTodoList projects a slice of entities into response shapes.
func FromTodoList(todos []todo.Todo) []TodoResponse {
	out := make([]TodoResponse, len(todos))
	for i := range todos {
		out[i] = FromTodo(&todos[i])
	}
	return out
}
