// Package todo holds the Todo entity and its field validators. A Todo is a
// single actionable item scoped to one project.
package todo

import "time"

// Todo represents a single actionable item scoped to one project.
// ID, CreatedAt and ProjectID are immutable after creation.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	ProjectID   string    `json:"projectId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New carries the caller-supplied fields for creating a Todo.
type New struct {
	Title       string
	Description string
	ProjectID   string
}

// Update is a partial field map for mutating a Todo. Nil fields are skipped.
// ProjectID is immutable and has no representation here.
type Update struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Create validates the input and constructs a Todo, not yet completed, with
// both timestamps stamped to now. The repository assigns the id on persist.
func Create(in New, now time.Time) (*Todo, error) {
	if err := ValidateNew(in); err != nil {
		return nil, err
	}

	return &Todo{
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		ProjectID:   in.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Complete marks the todo done and bumps UpdatedAt.
func (t *Todo) Complete(now time.Time) {
	t.Completed = true
	t.UpdatedAt = now
}

// Incomplete reverts the todo to not done and bumps UpdatedAt.
func (t *Todo) Incomplete(now time.Time) {
	t.Completed = false
	t.UpdatedAt = now
}

// Apply validates the partial update in full before touching any field, then
// merges every present field and bumps UpdatedAt, even when the update is
// empty.
func (t *Todo) Apply(u Update, now time.Time) error {
	if err := ValidateUpdate(u); err != nil {
		return err
	}

	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	t.UpdatedAt = now
	return nil
}
