package ports

import (
	"context"

	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/domain/user"
)

// UserProjects bundles a user's projects with the spatial positions of every
// project on the map canvas, keyed by project id.
type UserProjects struct {
	Projects  []project.Project
	Positions map[string]project.Position
}

// ProjectRepository is the outbound port for project persistence.
// Implemented by infrastructure adapters; the core never observes invalid
// entities because validation happens before any repository call.
type ProjectRepository interface {
	// Create persists a new project and returns it with the
	// repository-assigned id.
	Create(ctx context.Context, p *project.Project) (*project.Project, error)

	// GetByID returns a project by id.
	// Returns a domain.ErrNotFound error if the project does not exist.
	GetByID(ctx context.Context, id string) (*project.Project, error)

	// GetByUserID returns every project owned by the user together with
	// the position map.
	GetByUserID(ctx context.Context, userID string) (*UserProjects, error)

	// Update applies a partial update to the stored project.
	Update(ctx context.Context, id string, changes project.Update) error

	// UpdatePosition replaces one project's map position.
	UpdatePosition(ctx context.Context, id string, pos project.Position) error

	// UpdateMultiplePositions replaces map positions for several projects
	// at once, keyed by project id.
	UpdateMultiplePositions(ctx context.Context, positions map[string]project.Position) error

	// Delete removes a project permanently. No soft delete.
	Delete(ctx context.Context, id string) error

	// SubscribeToUserProjects invokes callback with the current result set
	// immediately and again after every change to the user's projects.
	// The returned function cancels the subscription and is idempotent.
	SubscribeToUserProjects(ctx context.Context, userID string, callback func(UserProjects)) (func(), error)
}

// TodoRepository is the outbound port for todo persistence.
type TodoRepository interface {
	Create(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// GetByID returns a todo by id.
	// Returns a domain.ErrNotFound error if the todo does not exist.
	GetByID(ctx context.Context, id string) (*todo.Todo, error)

	// GetByProjectID returns all todos scoped to a project, oldest first.
	GetByProjectID(ctx context.Context, projectID string) ([]todo.Todo, error)

	Update(ctx context.Context, id string, changes todo.Update) error
	Delete(ctx context.Context, id string) error
}

// UserRepository is the outbound port for user profile persistence.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)

	// GetByID returns a user by id.
	// Returns a domain.ErrNotFound error if the user does not exist.
	GetByID(ctx context.Context, id string) (*user.User, error)

	// GetByEmail returns a user by email address.
	// Returns a domain.ErrNotFound error if no user has that email.
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	Update(ctx context.Context, id string, changes user.ProfileUpdate) error
	Delete(ctx context.Context, id string) error
}
