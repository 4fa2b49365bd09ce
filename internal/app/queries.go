package app

import (
	"context"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/ports"
)

// GetUserProjectsUseCase returns all projects owned by a user together with
// their map positions. Fails fast, before any I/O, when the user id is
// missing.
type GetUserProjectsUseCase struct {
	projects ports.ProjectRepository
}

// NewGetUserProjectsUseCase wires the use case.
func NewGetUserProjectsUseCase(projects ports.ProjectRepository) *GetUserProjectsUseCase {
	return &GetUserProjectsUseCase{projects: projects}
}

// Execute delegates to the repository after the id check.
func (uc *GetUserProjectsUseCase) Execute(ctx context.Context, userID string) (*ports.UserProjects, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "userId", Value: userID, Message: "is required"}
	}
	return uc.projects.GetByUserID(ctx, userID)
}

// GetProjectTodosUseCase returns all todos scoped to a project. Fails fast,
// before any I/O, when the project id is missing.
type GetProjectTodosUseCase struct {
	todos ports.TodoRepository
}

// NewGetProjectTodosUseCase wires the use case.
func NewGetProjectTodosUseCase(todos ports.TodoRepository) *GetProjectTodosUseCase {
	return &GetProjectTodosUseCase{todos: todos}
}

// Execute delegates to the repository after the id check.
func (uc *GetProjectTodosUseCase) Execute(ctx context.Context, projectID string) ([]todo.Todo, error) {
	if projectID == "" {
		return nil, &domain.ValidationError{Field: "projectId", Value: projectID, Message: "is required"}
	}
	return uc.todos.GetByProjectID(ctx, projectID)
}
