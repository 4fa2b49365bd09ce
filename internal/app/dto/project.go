// Package dto defines the data transfer objects exposed at the application
// boundary. Requests whitelist the fields a caller may supply; responses
// project entity fields into the wire shape. No business logic lives here
// beyond shape conversion.
package dto

import (
	"time"

	"github.com/planfold/planfold/internal/domain/project"
)

// CreateProjectRequest carries the caller-supplied fields for creating a
// project. Deadline is a textual date (RFC 3339 or YYYY-MM-DD).
type CreateProjectRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Deadline    string            `json:"deadline"`
	OwnerID     string            `json:"ownerId"`
	Position    *project.Position `json:"position"`
	Subtasks    []project.Subtask `json:"subtasks"`
}

// ToNew converts the request into the entity factory input, parsing the
// textual deadline. Field validation itself is the factory's job.
func (r CreateProjectRequest) ToNew() (project.New, error) {
	in := project.New{
		Title:       r.Title,
		Description: r.Description,
		Priority:    project.Priority(r.Priority),
		OwnerID:     r.OwnerID,
		Position:    r.Position,
		Subtasks:    r.Subtasks,
	}
	if r.Deadline != "" {
		deadline, err := project.ParseDeadline(r.Deadline)
		if err != nil {
			return project.New{}, err
		}
		in.Deadline = &deadline
	}
	return in, nil
}

// UpdateProjectRequest is the partial-update shape for a project. Nil fields
// mean "do not change". Only the allowed fields exist here; id, ownerId and
// createdAt have no representation and can never be smuggled through.
type UpdateProjectRequest struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Priority    *string           `json:"priority,omitempty"`
	Deadline    *string           `json:"deadline,omitempty"`
	Progress    *int              `json:"progress,omitempty"`
	Position    *project.Position `json:"position,omitempty"`
	Subtasks    []project.Subtask `json:"subtasks,omitempty"`
}

// ToChanges converts the request into the entity's partial update type,
// parsing the textual deadline when present.
func (r UpdateProjectRequest) ToChanges() (project.Update, error) {
	u := project.Update{
		Title:       r.Title,
		Description: r.Description,
		Progress:    r.Progress,
		Position:    r.Position,
		Subtasks:    r.Subtasks,
	}
	if r.Priority != nil {
		p := project.Priority(*r.Priority)
		u.Priority = &p
	}
	if r.Deadline != nil {
		deadline, err := project.ParseDeadline(*r.Deadline)
		if err != nil {
			return project.Update{}, err
		}
		u.Deadline = &deadline
	}
	return u, nil
}

// ProjectResponse is the response projection of a project entity. The field
// set is fixed: every documented field is present even when null.
type ProjectResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Deadline    *time.Time        `json:"deadline"`
	Progress    int               `json:"progress"`
	OwnerID     string            `json:"ownerId"`
	Position    *project.Position `json:"position"`
	Subtasks    []project.Subtask `json:"subtasks"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FromProject projects an entity into the response shape.
func FromProject(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority.String(),
		Deadline:    p.Deadline,
		Progress:    p.Progress,
		OwnerID:     p.OwnerID,
		Position:    p.Position,
		Subtasks:    p.Subtasks,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromProjectList projects a slice of entities into response shapes.
func FromProjectList(projects []project.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = FromProject(&projects[i])
	}
	return out
}

// Clone returns a deep copy of the response. Cached responses are cloned on
// every read and write so a caller mutating its copy cannot reach the cached
// one.
func (r ProjectResponse) Clone() ProjectResponse {
	out := r
	if r.Deadline != nil {
		d := *r.Deadline
		out.Deadline = &d
	}
	if r.Position != nil {
		pos := clonePosition(*r.Position)
		out.Position = &pos
	}
	if r.Subtasks != nil {
		out.Subtasks = append([]project.Subtask(nil), r.Subtasks...)
	}
	return out
}

// UserProjectsResponse pairs a user's projects with the map positions keyed
// by project id.
type UserProjectsResponse struct {
	Projects  []ProjectResponse           `json:"projects"`
	Positions map[string]project.Position `json:"positions"`
}

// Clone returns a deep copy of the response, including the positions map.
func (r UserProjectsResponse) Clone() UserProjectsResponse {
	out := r
	if r.Projects != nil {
		out.Projects = make([]ProjectResponse, len(r.Projects))
		for i := range r.Projects {
			out.Projects[i] = r.Projects[i].Clone()
		}
	}
	if r.Positions != nil {
		out.Positions = make(map[string]project.Position, len(r.Positions))
		for id, pos := range r.Positions {
			out.Positions[id] = clonePosition(pos)
		}
	}
	return out
}

func clonePosition(pos project.Position) project.Position {
	if pos.Radius != nil {
		radius := *pos.Radius
		pos.Radius = &radius
	}
	return pos
}
