// Package event defines the domain event taxonomy and the in-process
// publish/subscribe bus that decouples state mutation from side-effecting
// reactions (logging, cache invalidation, progress recalculation).
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/domain/todo"
)

// Event type tags. Exactly one distinct string per event kind; never reused.
const (
	TypeProjectCreated         = "PROJECT_CREATED"
	TypeProjectUpdated         = "PROJECT_UPDATED"
	TypeProjectDeleted         = "PROJECT_DELETED"
	TypeProjectProgressUpdated = "PROJECT_PROGRESS_UPDATED"
	TypeTodoCreated            = "TODO_CREATED"
	TypeTodoCompleted          = "TODO_COMPLETED"
	TypeTodoDeleted            = "TODO_DELETED"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Event is an immutable record of a state transition. Construct events only
// through the New* constructors; never mutate one after construction.
type Event struct {
	ID          string    `json:"eventId"`
	Type        string    `json:"eventType"`
	AggregateID string    `json:"aggregateId"`
	Data        any       `json:"data"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

// ProjectChanges is the payload of a ProjectUpdated event, wrapping the
// partial update that was applied.
type ProjectChanges struct {
	Changes project.Update `json:"changes"`
}

// ProgressChange is the payload of a ProjectProgressUpdated event.
type ProgressChange struct {
	OldProgress int `json:"oldProgress"`
	NewProgress int `json:"newProgress"`
}

// ProjectRef is the payload of todo events that point back at the owning
// project.
type ProjectRef struct {
	ProjectID string `json:"projectId"`
}

// newEvent stamps a fresh id and timestamp. IDs only need process-level
// uniqueness with overwhelming probability; a v4 UUID more than covers that.
func newEvent(eventType, aggregateID string, data any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Data:        data,
		Timestamp:   time.Now().UTC(),
		Version:     SchemaVersion,
	}
}

// NewProjectCreated records that a project came into existence. The payload
// is a snapshot of the created project.
func NewProjectCreated(projectID string, p project.Project) Event {
	return newEvent(TypeProjectCreated, projectID, p)
}

// NewProjectUpdated records a partial update applied to a project.
func NewProjectUpdated(projectID string, changes project.Update) Event {
	return newEvent(TypeProjectUpdated, projectID, ProjectChanges{Changes: changes})
}

// NewProjectDeleted records that a project was removed.
func NewProjectDeleted(projectID string) Event {
	return newEvent(TypeProjectDeleted, projectID, nil)
}

// NewProjectProgressUpdated records a derived-progress transition.
func NewProjectProgressUpdated(projectID string, oldProgress, newProgress int) Event {
	return newEvent(TypeProjectProgressUpdated, projectID, ProgressChange{
		OldProgress: oldProgress,
		NewProgress: newProgress,
	})
}

// NewTodoCreated records that a todo came into existence. The payload is a
// snapshot of the created todo.
func NewTodoCreated(todoID string, t todo.Todo) Event {
	return newEvent(TypeTodoCreated, todoID, t)
}

// NewTodoCompleted records that a todo was marked done.
func NewTodoCompleted(todoID, projectID string) Event {
	return newEvent(TypeTodoCompleted, todoID, ProjectRef{ProjectID: projectID})
}

// NewTodoDeleted records that a todo was removed.
func NewTodoDeleted(todoID, projectID string) Event {
	return newEvent(TypeTodoDeleted, todoID, ProjectRef{ProjectID: projectID})
}

// Types lists all defined event type tags.
func Types() []string {
	return []string{
		TypeProjectCreated,
		TypeProjectUpdated,
		TypeProjectDeleted,
		TypeProjectProgressUpdated,
		TypeTodoCreated,
		TypeTodoCompleted,
		TypeTodoDeleted,
	}
}
