// Package project holds the Project aggregate: the entity, its field
// validators, and the value types for priority, map position and subtasks.
package project

import (
	"math"
	"time"
)

// Project represents a long-running unit of work owned by one user. Progress
// is derived from the completion state of its subtasks and is never supplied
// by callers directly at creation time.
//
// ID, CreatedAt and OwnerID are immutable after creation; every mutation
// path refuses to touch them.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Progress    int        `json:"progress"`
	OwnerID     string     `json:"ownerId"`
	Position    *Position  `json:"position"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// New carries the caller-supplied fields for creating a Project.
type New struct {
	Title       string
	Description string
	Priority    Priority
	Deadline    *time.Time
	OwnerID     string
	Position    *Position
	Subtasks    []Subtask
}

// Update is a partial field map for mutating a Project. Nil fields are
// skipped entirely, so zero values can be set deliberately. The immutable
// fields (id, createdAt, ownerId) have no representation here.
type Update struct {
	Title       *string
	Description *string
	Priority    *Priority
	Deadline    *time.Time
	Progress    *int
	Position    *Position
	Subtasks    []Subtask
}

// IsEmpty reports whether the update carries no fields at all.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Deadline == nil && u.Progress == nil && u.Position == nil && u.Subtasks == nil
}

// Create validates the input and constructs a Project with progress 0 and
// both timestamps stamped to now. The repository assigns the id on persist.
// Validation errors propagate to the caller unchanged.
func Create(in New, now time.Time) (*Project, error) {
	if err := ValidateNew(in, now); err != nil {
		return nil, err
	}

	subtasks := in.Subtasks
	if subtasks == nil {
		subtasks = []Subtask{}
	}

	return &Project{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		Progress:    0,
		OwnerID:     in.OwnerID,
		Position:    in.Position,
		Subtasks:    subtasks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply validates the partial update in full before touching any field, then
// merges every present field and bumps UpdatedAt. UpdatedAt is refreshed even
// when the update is empty.
func (p *Project) Apply(u Update, now time.Time) error {
	if err := ValidateUpdate(u, now); err != nil {
		return err
	}

	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Priority != nil {
		p.Priority = *u.Priority
	}
	if u.Deadline != nil {
		p.Deadline = u.Deadline
	}
	if u.Progress != nil {
		p.Progress = *u.Progress
	}
	if u.Position != nil {
		p.Position = u.Position
	}
	if u.Subtasks != nil {
		p.Subtasks = u.Subtasks
	}
	p.UpdatedAt = now
	return nil
}

// UpdateProgress recomputes progress as the rounded percentage of completed
// subtasks. An empty subtask list yields exactly 0. Rounding is ordinary
// half-away-from-zero arithmetic rounding.
func (p *Project) UpdateProgress(now time.Time) {
	if len(p.Subtasks) == 0 {
		p.Progress = 0
		return
	}

	completed := 0
	for _, st := range p.Subtasks {
		if st.Completed {
			completed++
		}
	}
	p.Progress = Percentage(completed, len(p.Subtasks))
	p.UpdatedAt = now
}

// UpdatePosition replaces the map position and bumps UpdatedAt.
func (p *Project) UpdatePosition(pos *Position, now time.Time) {
	p.Position = pos
	p.UpdatedAt = now
}

// IsOverdue reports whether the deadline is set and strictly before now.
func (p *Project) IsOverdue(now time.Time) bool {
	return p.Deadline != nil && p.Deadline.Before(now)
}

// Percentage returns round(100 * completed / total) with half-away-from-zero
// rounding, or 0 when total is 0.
func Percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
