package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/planfold/planfold/internal/app"
	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/platform/cache"
	"github.com/planfold/planfold/internal/ports"
)

func newProjectService(t *testing.T, repo *fakeProjectRepo, bus *event.Bus, c *cache.Cache) *app.ProjectApplicationService {
	t.Helper()
	return app.NewProjectApplicationService(repo, bus, c, testClock(), nil)
}

func TestProjectService_CreateProject(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	svc := newProjectService(t, repo, nil, nil)

	resp, err := svc.CreateProject(context.Background(), dto.CreateProjectRequest{
		Title:    "Garden",
		OwnerID:  "user-1",
		Priority: "high",
		Deadline: "2027-01-01",
	})
	if err != nil {
		t.Fatalf("CreateProject() error: %v", err)
	}

	if resp.ID == "" || resp.Progress != 0 || resp.Priority != "high" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Deadline == nil || resp.Deadline.Year() != 2027 {
		t.Errorf("Deadline = %v, want parsed 2027 date", resp.Deadline)
	}
}

func TestProjectService_ErrorPrefix(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	svc := newProjectService(t, repo, nil, nil)

	tests := []struct {
		name       string
		call       func() error
		wantPrefix string
	}{
		{
			name: "create",
			call: func() error {
				_, err := svc.CreateProject(context.Background(), dto.CreateProjectRequest{OwnerID: "user-1"})
				return err
			},
			wantPrefix: "failed to create project: ",
		},
		{
			name: "get",
			call: func() error {
				_, err := svc.GetProject(context.Background(), "missing")
				return err
			},
			wantPrefix: "failed to get project: ",
		},
		{
			name: "update",
			call: func() error {
				_, err := svc.UpdateProject(context.Background(), "missing", dto.UpdateProjectRequest{})
				return err
			},
			wantPrefix: "failed to update project: ",
		},
		{
			name: "delete",
			call: func() error {
				return svc.DeleteProject(context.Background(), "missing")
			},
			wantPrefix: "failed to delete project: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), tt.wantPrefix) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tt.wantPrefix)
			}
		})
	}
}

func TestProjectService_GetProject_NotFoundDetail(t *testing.T) {
	t.Parallel()

	svc := newProjectService(t, newFakeProjectRepo(t), nil, nil)

	_, err := svc.GetProject(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound in chain", err)
	}
	var nfe *domain.NotFoundError
	if !errors.As(err, &nfe) || nfe.Resource != "project" || nfe.ID != "missing" {
		t.Errorf("error = %v, want NotFoundError{project, missing}", err)
	}
}

func TestProjectService_GetProject_CacheReadThrough(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	c := cache.New(10, time.Minute)
	svc := newProjectService(t, repo, nil, c)

	first, err := svc.GetProject(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetProject() error: %v", err)
	}

	// A repo failure after caching proves the second read is served from
	// the cache.
	repo.getErr = errors.New("db down")
	second, err := svc.GetProject(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("cached GetProject() error: %v", err)
	}
	if second.ID != first.ID || second.Title != first.Title {
		t.Errorf("cached response differs: %+v vs %+v", second, first)
	}
}

func TestProjectService_GetUserProjects_CacheReadThrough(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seedProject(t, repo)
	c := cache.New(10, time.Minute)
	svc := newProjectService(t, repo, nil, c)

	first, err := svc.GetUserProjects(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserProjects() error: %v", err)
	}
	if len(first.Projects) != 1 {
		t.Fatalf("len(Projects) = %d, want 1", len(first.Projects))
	}

	repo.getErr = errors.New("db down")
	second, err := svc.GetUserProjects(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("cached GetUserProjects() error: %v", err)
	}
	if len(second.Projects) != 1 {
		t.Errorf("cached len(Projects) = %d, want 1", len(second.Projects))
	}
}

func TestProjectService_GetUserProjects_CachedResponseIsolated(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	radius := 5.0
	repo.byID[seeded.ID].Position = &project.Position{X: 1, Y: 2, Radius: &radius}
	c := cache.New(10, time.Minute)
	svc := newProjectService(t, repo, nil, c)

	first, err := svc.GetUserProjects(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserProjects() error: %v", err)
	}

	// Tampering with one caller's copy must not leak into the cache.
	first.Positions[seeded.ID] = project.Position{X: 99, Y: 99}
	first.Positions["rogue"] = project.Position{}
	first.Projects[0].Title = "tampered"
	*first.Projects[0].Position.Radius = 42

	repo.getErr = errors.New("db down")
	second, err := svc.GetUserProjects(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("cached GetUserProjects() error: %v", err)
	}

	if got := second.Positions[seeded.ID]; got.X != 1 || got.Y != 2 {
		t.Errorf("Positions[%s] = %+v, want the original {1 2}", seeded.ID, got)
	}
	if _, ok := second.Positions["rogue"]; ok {
		t.Error("rogue position leaked into the cache")
	}
	if second.Projects[0].Title != "Garden" {
		t.Errorf("Title = %q, want %q", second.Projects[0].Title, "Garden")
	}
	if second.Projects[0].Position.Radius == nil || *second.Projects[0].Position.Radius != 5 {
		t.Errorf("Radius = %v, want 5", second.Projects[0].Position.Radius)
	}
}

func TestProjectService_GetProject_CachedResponseIsolated(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	repo.byID[seeded.ID].Subtasks = []project.Subtask{{ID: "s1", Title: "dig"}}
	c := cache.New(10, time.Minute)
	svc := newProjectService(t, repo, nil, c)

	first, err := svc.GetProject(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetProject() error: %v", err)
	}
	first.Subtasks[0].Title = "tampered"

	repo.getErr = errors.New("db down")
	second, err := svc.GetProject(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("cached GetProject() error: %v", err)
	}
	if second.Subtasks[0].Title != "dig" {
		t.Errorf("Subtasks[0].Title = %q, want %q", second.Subtasks[0].Title, "dig")
	}
}

func TestProjectService_DeleteProject_PublishesEvent(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	bus := event.New(nil)
	collect := recordEvents(bus)
	svc := newProjectService(t, repo, bus, nil)

	if err := svc.DeleteProject(context.Background(), seeded.ID); err != nil {
		t.Fatalf("DeleteProject() error: %v", err)
	}

	events := collect()
	if len(events) != 1 || events[0].Type != event.TypeProjectDeleted {
		t.Fatalf("events = %+v, want one ProjectDeleted", events)
	}
	if events[0].AggregateID != seeded.ID {
		t.Errorf("AggregateID = %q, want %q", events[0].AggregateID, seeded.ID)
	}
}

func TestProjectService_UpdatePosition_ValidatesShape(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	svc := newProjectService(t, repo, nil, nil)

	negative := -1.0
	err := svc.UpdateProjectPosition(context.Background(), seeded.ID, project.Position{Radius: &negative})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}

	err = svc.UpdateMultipleProjectPositions(context.Background(), map[string]project.Position{
		seeded.ID: {Radius: &negative},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("batch error = %v, want ErrValidation", err)
	}
}

func TestProjectService_UpdatePosition_EvictsCache(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)
	c := cache.New(10, time.Minute)
	svc := newProjectService(t, repo, nil, c)

	if _, err := svc.GetProject(context.Background(), seeded.ID); err != nil {
		t.Fatalf("GetProject() error: %v", err)
	}
	if _, err := svc.GetUserProjects(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetUserProjects() error: %v", err)
	}

	if err := svc.UpdateProjectPosition(context.Background(), seeded.ID, project.Position{X: 4, Y: 2}); err != nil {
		t.Fatalf("UpdateProjectPosition() error: %v", err)
	}

	if _, ok := c.Get(cache.Key("project", seeded.ID)); ok {
		t.Error("project entry still cached after position update")
	}
	if _, ok := c.Get(cache.Key("user-projects", "user-1")); ok {
		t.Error("user-projects entry still cached after position update")
	}
}

func TestProjectService_SubscribeToUserProjects(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	seeded := seedProject(t, repo)

	repo.subscribeFn = func(ctx context.Context, userID string, callback func(ports.UserProjects)) (func(), error) {
		callback(ports.UserProjects{
			Projects:  []project.Project{*seeded},
			Positions: map[string]project.Position{},
		})
		return func() {}, nil
	}

	svc := newProjectService(t, repo, nil, nil)

	var got []dto.UserProjectsResponse
	unsubscribe, err := svc.SubscribeToUserProjects(context.Background(), "user-1", func(resp dto.UserProjectsResponse) {
		got = append(got, resp)
	})
	if err != nil {
		t.Fatalf("SubscribeToUserProjects() error: %v", err)
	}
	defer unsubscribe()

	if len(got) != 1 || len(got[0].Projects) != 1 || got[0].Projects[0].ID != seeded.ID {
		t.Errorf("snapshots = %+v, want one with the seeded project", got)
	}
}
