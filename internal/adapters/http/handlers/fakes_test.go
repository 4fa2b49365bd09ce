package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planfold/planfold/internal/adapters/http/middleware"
	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

// Hand-written fakes with function fields. A nil field fails the test on
// call so unexpected service interactions surface immediately.

type fakeProjectService struct {
	t *testing.T

	createProjectFn           func(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	getProjectFn              func(ctx context.Context, id string) (*dto.ProjectResponse, error)
	getUserProjectsFn         func(ctx context.Context, userID string) (*dto.UserProjectsResponse, error)
	updateProjectFn           func(ctx context.Context, id string, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	updatePositionFn          func(ctx context.Context, id string, pos project.Position) error
	updateMultiplePositionsFn func(ctx context.Context, positions map[string]project.Position) error
	deleteProjectFn           func(ctx context.Context, id string) error
	subscribeFn               func(ctx context.Context, userID string, callback func(dto.UserProjectsResponse)) (func(), error)
}

var _ ports.ProjectService = (*fakeProjectService)(nil)

func (f *fakeProjectService) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if f.createProjectFn == nil {
		f.t.Fatal("unexpected CreateProject call")
	}
	return f.createProjectFn(ctx, req)
}

func (f *fakeProjectService) GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	if f.getProjectFn == nil {
		f.t.Fatal("unexpected GetProject call")
	}
	return f.getProjectFn(ctx, id)
}

func (f *fakeProjectService) GetUserProjects(ctx context.Context, userID string) (*dto.UserProjectsResponse, error) {
	if f.getUserProjectsFn == nil {
		f.t.Fatal("unexpected GetUserProjects call")
	}
	return f.getUserProjectsFn(ctx, userID)
}

func (f *fakeProjectService) UpdateProject(ctx context.Context, id string, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if f.updateProjectFn == nil {
		f.t.Fatal("unexpected UpdateProject call")
	}
	return f.updateProjectFn(ctx, id, req)
}

func (f *fakeProjectService) UpdateProjectPosition(ctx context.Context, id string, pos project.Position) error {
	if f.updatePositionFn == nil {
		f.t.Fatal("unexpected UpdateProjectPosition call")
	}
	return f.updatePositionFn(ctx, id, pos)
}

func (f *fakeProjectService) UpdateMultipleProjectPositions(ctx context.Context, positions map[string]project.Position) error {
	if f.updateMultiplePositionsFn == nil {
		f.t.Fatal("unexpected UpdateMultipleProjectPositions call")
	}
	return f.updateMultiplePositionsFn(ctx, positions)
}

func (f *fakeProjectService) DeleteProject(ctx context.Context, id string) error {
	if f.deleteProjectFn == nil {
		f.t.Fatal("unexpected DeleteProject call")
	}
	return f.deleteProjectFn(ctx, id)
}

func (f *fakeProjectService) SubscribeToUserProjects(ctx context.Context, userID string, callback func(dto.UserProjectsResponse)) (func(), error) {
	if f.subscribeFn == nil {
		f.t.Fatal("unexpected SubscribeToUserProjects call")
	}
	return f.subscribeFn(ctx, userID, callback)
}

type fakeTodoService struct {
	t *testing.T

	createTodoFn      func(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoResponse, error)
	getTodoFn         func(ctx context.Context, id string) (*dto.TodoResponse, error)
	getProjectTodosFn func(ctx context.Context, projectID string) ([]dto.TodoResponse, error)
	updateTodoFn      func(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoResponse, error)
	deleteTodoFn      func(ctx context.Context, id string) error
}

var _ ports.TodoService = (*fakeTodoService)(nil)

func (f *fakeTodoService) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	if f.createTodoFn == nil {
		f.t.Fatal("unexpected CreateTodo call")
	}
	return f.createTodoFn(ctx, req)
}

func (f *fakeTodoService) GetTodo(ctx context.Context, id string) (*dto.TodoResponse, error) {
	if f.getTodoFn == nil {
		f.t.Fatal("unexpected GetTodo call")
	}
	return f.getTodoFn(ctx, id)
}

func (f *fakeTodoService) GetProjectTodos(ctx context.Context, projectID string) ([]dto.TodoResponse, error) {
	if f.getProjectTodosFn == nil {
		f.t.Fatal("unexpected GetProjectTodos call")
	}
	return f.getProjectTodosFn(ctx, projectID)
}

func (f *fakeTodoService) UpdateTodo(ctx context.Context, id string, req dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
	if f.updateTodoFn == nil {
		f.t.Fatal("unexpected UpdateTodo call")
	}
	return f.updateTodoFn(ctx, id, req)
}

func (f *fakeTodoService) DeleteTodo(ctx context.Context, id string) error {
	if f.deleteTodoFn == nil {
		f.t.Fatal("unexpected DeleteTodo call")
	}
	return f.deleteTodoFn(ctx, id)
}

type fakeUserService struct {
	t *testing.T

	ensureUserFn    func(ctx context.Context, u *user.User) (*user.User, error)
	getUserFn       func(ctx context.Context, id string) (*user.User, error)
	updateProfileFn func(ctx context.Context, id string, changes user.ProfileUpdate) (*user.User, error)
}

var _ ports.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) EnsureUser(ctx context.Context, u *user.User) (*user.User, error) {
	if f.ensureUserFn == nil {
		f.t.Fatal("unexpected EnsureUser call")
	}
	return f.ensureUserFn(ctx, u)
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	if f.getUserFn == nil {
		f.t.Fatal("unexpected GetUser call")
	}
	return f.getUserFn(ctx, id)
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id string, changes user.ProfileUpdate) (*user.User, error) {
	if f.updateProfileFn == nil {
		f.t.Fatal("unexpected UpdateProfile call")
	}
	return f.updateProfileFn(ctx, id, changes)
}

// authedRequest builds a request with the given user id injected the way the
// auth middleware would.
func authedRequest(method, target, userID string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != "" {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	return r
}
