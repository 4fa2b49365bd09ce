package ports

import (
	"context"

	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/user"
)

// ProjectService is the inbound port for project operations. Implemented by
// the application layer; called by inbound adapters (HTTP handlers).
// Every method rejects with an error of the form
// "failed to <operation>: <original message>", the single error
// translation boundary for the presentation layer.
type ProjectService interface {
	// CreateProject validates and persists a new project with progress 0.
	CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)

	// GetProject returns a single project by id.
	GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error)

	// GetUserProjects returns all projects owned by a user together with
	// their map positions.
	GetUserProjects(ctx context.Context, userID string) (*dto.UserProjectsResponse, error)

	// UpdateProject applies a validated partial update and returns the
	// refreshed project.
	UpdateProject(ctx context.Context, id string, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error)

	// UpdateProjectPosition replaces one project's map position.
	UpdateProjectPosition(ctx context.Context, id string, pos project.Position) error

	// UpdateMultipleProjectPositions replaces positions for several
	// projects at once (drag-end batch from the map canvas).
	UpdateMultipleProjectPositions(ctx context.Context, positions map[string]project.Position) error

	// DeleteProject removes a project permanently.
	DeleteProject(ctx context.Context, id string) error

	// SubscribeToUserProjects streams the user's project list: callback
	// fires with the current set and after every change. The returned
	// function cancels the subscription.
	SubscribeToUserProjects(ctx context.Context, userID string, callback func(dto.UserProjectsResponse)) (func(), error)
}

// TodoService is the inbound port for todo operations.
type TodoService interface {
	CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoResponse, error)
	GetTodo(ctx context.Context, id string) (*dto.TodoResponse, error)
	GetProjectTodos(ctx context.Context, projectID string) ([]dto.TodoResponse, error)
	UpdateTodo(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoResponse, error)
	DeleteTodo(ctx context.Context, id string) error
}

// UserService is the inbound port for account profile operations.
type UserService interface {
	// EnsureUser upserts the profile asserted by the identity provider:
	// created on first sign-in, profile fields refreshed afterwards.
	EnsureUser(ctx context.Context, u *user.User) (*user.User, error)

	GetUser(ctx context.Context, id string) (*user.User, error)
	UpdateProfile(ctx context.Context, id string, changes user.ProfileUpdate) (*user.User, error)
}
