package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/planfold/planfold/internal/app"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
)

// recordedEvents subscribes to every event type and returns the collected
// events. The bus delivers synchronously before Publish returns, but the
// handlers run concurrently, hence the channel.
func recordEvents(bus *event.Bus) func() []event.Event {
	ch := make(chan event.Event, 32)
	for _, typ := range event.Types() {
		bus.Subscribe(typ, func(_ context.Context, evt event.Event) error {
			ch <- evt
			return nil
		})
	}
	return func() []event.Event {
		var out []event.Event
		for {
			select {
			case evt := <-ch:
				out = append(out, evt)
			default:
				return out
			}
		}
	}
}

func TestCreateProjectUseCase(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	bus := event.New(nil)
	collect := recordEvents(bus)
	uc := app.NewCreateProjectUseCase(repo, bus, testClock())

	created, err := uc.Execute(context.Background(), project.New{
		Title:   "Garden redesign",
		OwnerID: "user-1",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if created.ID == "" {
		t.Error("repository did not assign an id")
	}
	if created.Progress != 0 {
		t.Errorf("Progress = %d, want 0", created.Progress)
	}
	if repo.creates != 1 {
		t.Errorf("repo.Create called %d times, want 1", repo.creates)
	}

	events := collect()
	if len(events) != 1 || events[0].Type != event.TypeProjectCreated {
		t.Fatalf("events = %+v, want one ProjectCreated", events)
	}
	if events[0].AggregateID != created.ID {
		t.Errorf("AggregateID = %q, want %q", events[0].AggregateID, created.ID)
	}
}

func TestCreateProjectUseCase_InvalidInputSkipsRepository(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	uc := app.NewCreateProjectUseCase(repo, nil, testClock())

	_, err := uc.Execute(context.Background(), project.New{OwnerID: "user-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Execute() error = %v, want ErrValidation", err)
	}
	if repo.creates != 0 {
		t.Error("repository must not be called for invalid input")
	}
}

func TestCreateProjectUseCase_RepoErrorSuppressesEvent(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo(t)
	repo.createErr = errors.New("disk full")
	bus := event.New(nil)
	collect := recordEvents(bus)
	uc := app.NewCreateProjectUseCase(repo, bus, testClock())

	_, err := uc.Execute(context.Background(), project.New{Title: "Garden", OwnerID: "user-1"})
	if err == nil {
		t.Fatal("Execute() error = nil, want repo error")
	}
	if events := collect(); len(events) != 0 {
		t.Errorf("events published after failed persist: %+v", events)
	}
}
