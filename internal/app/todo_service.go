package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/ports"
)

// Compile-time check that TodoApplicationService implements ports.TodoService.
var _ ports.TodoService = (*TodoApplicationService)(nil)

// TodoApplicationService adapts the todo use cases to the DTO boundary.
type TodoApplicationService struct {
	createTodo      *CreateTodoUseCase
	getProjectTodos *GetProjectTodosUseCase
	todos           ports.TodoRepository
	bus             *event.Bus
	clock           domain.Clock
	logger          *slog.Logger
}

// NewTodoApplicationService wires the service and its use cases. The bus and
// logger are optional; a nil clock falls back to the system clock.
func NewTodoApplicationService(
	todos ports.TodoRepository,
	bus *event.Bus,
	clock domain.Clock,
	logger *slog.Logger,
) *TodoApplicationService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TodoApplicationService{
		createTodo:      NewCreateTodoUseCase(todos, bus, clock),
		getProjectTodos: NewGetProjectTodosUseCase(todos),
		todos:           todos,
		bus:             bus,
		clock:           clock,
		logger:          logger,
	}
}

// CreateTodo validates and persists a new todo, incomplete by construction.
func (s *TodoApplicationService) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	s.logger.InfoContext(ctx, "creating todo", slog.String("project_id", req.ProjectID))

	created, err := s.createTodo.Execute(ctx, req.ToNew())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo",
			slog.String("operation", "CreateTodo"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	resp := dto.FromTodo(created)
	return &resp, nil
}

// GetTodo returns a single todo by id.
func (s *TodoApplicationService) GetTodo(ctx context.Context, id string) (*dto.TodoResponse, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "todo", ID: id}
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	resp := dto.FromTodo(t)
	return &resp, nil
}

// GetProjectTodos returns all todos scoped to a project, oldest first.
func (s *TodoApplicationService) GetProjectTodos(ctx context.Context, projectID string) ([]dto.TodoResponse, error) {
	todos, err := s.getProjectTodos.Execute(ctx, projectID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get project todos",
			slog.String("operation", "GetProjectTodos"),
			slog.String("project_id", projectID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to get project todos: %w", err)
	}
	return dto.FromTodoList(todos), nil
}

// UpdateTodo applies a validated partial update and returns the refreshed
// todo. A completion transition publishes TodoCompleted.
func (s *TodoApplicationService) UpdateTodo(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
	changes := req.ToChanges()
	if err := todo.ValidateUpdate(changes); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	existing, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "todo", ID: id}
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if err := s.todos.Update(ctx, id, changes); err != nil {
		s.logger.ErrorContext(ctx, "failed to update todo",
			slog.String("operation", "UpdateTodo"),
			slog.String("todo_id", id),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	updated, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if s.bus != nil && changes.Completed != nil && *changes.Completed && !existing.Completed {
		s.bus.Publish(ctx, event.NewTodoCompleted(updated.ID, updated.ProjectID))
	}

	resp := dto.FromTodo(updated)
	return &resp, nil
}

// DeleteTodo removes a todo permanently and publishes TodoDeleted carrying
// the parent project id, so reactors can recompute project progress.
func (s *TodoApplicationService) DeleteTodo(ctx context.Context, id string) error {
	existing, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "todo", ID: id}
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if err := s.todos.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete todo",
			slog.String("operation", "DeleteTodo"),
			slog.String("todo_id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, event.NewTodoDeleted(id, existing.ProjectID))
	}
	return nil
}
