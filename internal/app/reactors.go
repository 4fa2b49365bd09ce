package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/platform/cache"
	"github.com/planfold/planfold/internal/ports"
)

// EventLogger is a reactor that records every domain event. It never fails.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger builds the logging reactor. A nil logger discards.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventLogger{logger: logger}
}

// Handle logs the event type and aggregate id.
func (r *EventLogger) Handle(ctx context.Context, evt event.Event) error {
	r.logger.InfoContext(ctx, "domain event",
		slog.String("event_id", evt.ID),
		slog.String("event_type", evt.Type),
		slog.String("aggregate_id", evt.AggregateID),
	)
	return nil
}

// CacheInvalidator is a reactor that evicts read-model cache entries when a
// project changes. It evicts the single-project entry by id and every
// user-projects entry, since project events do not all carry the owner id.
type CacheInvalidator struct {
	cache *cache.Cache
}

// NewCacheInvalidator builds the invalidation reactor.
func NewCacheInvalidator(c *cache.Cache) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// Handle evicts the affected entries. Never fails.
func (r *CacheInvalidator) Handle(_ context.Context, evt event.Event) error {
	if r.cache == nil {
		return nil
	}
	r.cache.Delete(cache.Key(cachePrefixProject, evt.AggregateID))
	r.cache.DeletePrefix(cachePrefixUserProjects)
	return nil
}

// ProgressRecalculator is a reactor that keeps a project's derived progress
// in sync with its todos. Whenever a todo is created, completed or deleted it
// recomputes the completion percentage over the project's todo list, persists
// it when it changed, and publishes ProjectProgressUpdated.
type ProgressRecalculator struct {
	projects ports.ProjectRepository
	todos    ports.TodoRepository
	bus      *event.Bus
	logger   *slog.Logger
}

// NewProgressRecalculator builds the progress reactor.
func NewProgressRecalculator(projects ports.ProjectRepository, todos ports.TodoRepository, bus *event.Bus, logger *slog.Logger) *ProgressRecalculator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProgressRecalculator{projects: projects, todos: todos, bus: bus, logger: logger}
}

// Handle recomputes progress for the todo's parent project. A project that
// disappeared between the event and the reaction is not an error.
func (r *ProgressRecalculator) Handle(ctx context.Context, evt event.Event) error {
	projectID := projectIDOf(evt)
	if projectID == "" {
		return nil
	}

	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("fetch project %s: %w", projectID, err)
	}

	todos, err := r.todos.GetByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetch todos for project %s: %w", projectID, err)
	}

	completed := 0
	for _, t := range todos {
		if t.Completed {
			completed++
		}
	}
	newProgress := project.Percentage(completed, len(todos))
	if newProgress == p.Progress {
		return nil
	}

	if err := r.projects.Update(ctx, projectID, project.Update{Progress: &newProgress}); err != nil {
		return fmt.Errorf("persist progress for project %s: %w", projectID, err)
	}

	r.logger.DebugContext(ctx, "project progress recalculated",
		slog.String("project_id", projectID),
		slog.Int("old_progress", p.Progress),
		slog.Int("new_progress", newProgress),
	)
	if r.bus != nil {
		r.bus.Publish(ctx, event.NewProjectProgressUpdated(projectID, p.Progress, newProgress))
	}
	return nil
}

// projectIDOf extracts the parent project id from a todo event payload.
func projectIDOf(evt event.Event) string {
	switch data := evt.Data.(type) {
	case todo.Todo:
		return data.ProjectID
	case event.ProjectRef:
		return data.ProjectID
	default:
		return ""
	}
}

// RegisterReactors subscribes the standard reactor set on the bus and
// returns a function that removes all of them.
func RegisterReactors(
	bus *event.Bus,
	projects ports.ProjectRepository,
	todos ports.TodoRepository,
	c *cache.Cache,
	logger *slog.Logger,
) func() {
	eventLogger := NewEventLogger(logger)
	invalidator := NewCacheInvalidator(c)
	recalculator := NewProgressRecalculator(projects, todos, bus, logger)

	var unsubscribes []func()
	for _, eventType := range event.Types() {
		unsubscribes = append(unsubscribes, bus.Subscribe(eventType, eventLogger.Handle))
	}
	for _, eventType := range []string{
		event.TypeProjectCreated,
		event.TypeProjectUpdated,
		event.TypeProjectDeleted,
		event.TypeProjectProgressUpdated,
	} {
		unsubscribes = append(unsubscribes, bus.Subscribe(eventType, invalidator.Handle))
	}
	for _, eventType := range []string{
		event.TypeTodoCreated,
		event.TypeTodoCompleted,
		event.TypeTodoDeleted,
	} {
		unsubscribes = append(unsubscribes, bus.Subscribe(eventType, recalculator.Handle))
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}
