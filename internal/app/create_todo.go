package app

import (
	"context"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/ports"
)

// CreateTodoUseCase constructs a todo through the validating factory and
// persists it.
type CreateTodoUseCase struct {
	todos ports.TodoRepository
	bus   *event.Bus
	clock domain.Clock
}

// NewCreateTodoUseCase wires the use case. A nil bus disables event
// publication; a nil clock falls back to the system clock.
func NewCreateTodoUseCase(todos ports.TodoRepository, bus *event.Bus, clock domain.Clock) *CreateTodoUseCase {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CreateTodoUseCase{todos: todos, bus: bus, clock: clock}
}

// Execute validates and persists a new todo, then publishes TodoCreated.
func (uc *CreateTodoUseCase) Execute(ctx context.Context, in todo.New) (*todo.Todo, error) {
	t, err := todo.Create(in, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	created, err := uc.todos.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	if uc.bus != nil {
		uc.bus.Publish(ctx, event.NewTodoCreated(created.ID, *created))
	}
	return created, nil
}
