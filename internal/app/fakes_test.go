package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func testClock() domain.Clock {
	return domain.FixedClock{Instant: testNow}
}

// fakeProjectRepo is an in-memory ProjectRepository with call counters and
// optional per-method overrides.
type fakeProjectRepo struct {
	t *testing.T

	byID    map[string]*project.Project
	creates int
	updates int
	deletes int

	createErr error
	updateErr error
	deleteErr error
	getErr    error

	subscribeFn func(ctx context.Context, userID string, callback func(ports.UserProjects)) (func(), error)
}

func newFakeProjectRepo(t *testing.T) *fakeProjectRepo {
	return &fakeProjectRepo{t: t, byID: make(map[string]*project.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *project.Project) (*project.Project, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *p
	if stored.ID == "" {
		stored.ID = "p1"
	}
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*project.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "project", ID: id}
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjectRepo) GetByUserID(_ context.Context, userID string) (*ports.UserProjects, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	result := &ports.UserProjects{Positions: make(map[string]project.Position)}
	for _, p := range f.byID {
		if p.OwnerID != userID {
			continue
		}
		result.Projects = append(result.Projects, *p)
		if p.Position != nil {
			result.Positions[p.ID] = *p.Position
		}
	}
	return result, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id string, changes project.Update) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "project", ID: id}
	}
	return p.Apply(changes, testNow)
}

func (f *fakeProjectRepo) UpdatePosition(_ context.Context, id string, pos project.Position) error {
	p, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "project", ID: id}
	}
	p.UpdatePosition(&pos, testNow)
	return nil
}

func (f *fakeProjectRepo) UpdateMultiplePositions(ctx context.Context, positions map[string]project.Position) error {
	for id, pos := range positions {
		if err := f.UpdatePosition(ctx, id, pos); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return &domain.NotFoundError{Resource: "project", ID: id}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProjectRepo) SubscribeToUserProjects(ctx context.Context, userID string, callback func(ports.UserProjects)) (func(), error) {
	if f.subscribeFn == nil {
		f.t.Fatal("unexpected SubscribeToUserProjects call")
	}
	return f.subscribeFn(ctx, userID, callback)
}

// fakeTodoRepo is an in-memory TodoRepository.
type fakeTodoRepo struct {
	byID    map[string]*todo.Todo
	creates int
	updates int
	deletes int

	createErr error
	updateErr error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{byID: make(map[string]*todo.Todo)}
}

func (f *fakeTodoRepo) Create(_ context.Context, t *todo.Todo) (*todo.Todo, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *t
	if stored.ID == "" {
		stored.ID = "t1"
	}
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeTodoRepo) GetByID(_ context.Context, id string) (*todo.Todo, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "todo", ID: id}
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTodoRepo) GetByProjectID(_ context.Context, projectID string) ([]todo.Todo, error) {
	var out []todo.Todo
	for _, t := range f.byID {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, id string, changes todo.Update) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	t, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "todo", ID: id}
	}
	return t.Apply(changes, testNow)
}

func (f *fakeTodoRepo) Delete(_ context.Context, id string) error {
	f.deletes++
	if _, ok := f.byID[id]; !ok {
		return &domain.NotFoundError{Resource: "todo", ID: id}
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository keyed by id and email.
type fakeUserRepo struct {
	byID    map[string]*user.User
	byEmail map[string]*user.User
	creates int
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) (*user.User, error) {
	f.creates++
	stored := *u
	if stored.ID == "" {
		stored.ID = "user-1"
	}
	f.byID[stored.ID] = &stored
	f.byEmail[stored.Email] = &stored
	return &stored, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", ID: id}
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", ID: email}
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id string, changes user.ProfileUpdate) error {
	f.updates++
	u, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}
	u.ApplyProfile(changes, testNow)
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}
	delete(f.byEmail, u.Email)
	delete(f.byID, id)
	return nil
}
