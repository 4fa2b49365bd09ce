package app

import (
	"context"
	"errors"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/ports"
)

// UpdateProjectUseCase applies partial updates to an existing project.
//
// The position paths deliberately skip the existence pre-fetch: they are
// thin pass-throughs to the repository, issued in bursts when the user drags
// projects around the map canvas. The position shape has already been
// checked at the DTO boundary.
type UpdateProjectUseCase struct {
	projects ports.ProjectRepository
	bus      *event.Bus
	clock    domain.Clock
}

// NewUpdateProjectUseCase wires the use case. A nil bus disables event
// publication; a nil clock falls back to the system clock.
func NewUpdateProjectUseCase(projects ports.ProjectRepository, bus *event.Bus, clock domain.Clock) *UpdateProjectUseCase {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &UpdateProjectUseCase{projects: projects, bus: bus, clock: clock}
}

// Execute validates the partial update, verifies the project exists, and
// delegates to the repository. The repository is never called for a missing
// project.
func (uc *UpdateProjectUseCase) Execute(ctx context.Context, id string, changes project.Update) error {
	if id == "" {
		return &domain.ValidationError{Field: "id", Value: id, Message: "is required"}
	}
	if err := project.ValidateUpdate(changes, uc.clock.Now()); err != nil {
		return err
	}

	if _, err := uc.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Resource: "project", ID: id}
		}
		return err
	}

	if err := uc.projects.Update(ctx, id, changes); err != nil {
		return err
	}

	if uc.bus != nil {
		uc.bus.Publish(ctx, event.NewProjectUpdated(id, changes))
	}
	return nil
}

// UpdatePosition replaces one project's map position without a pre-fetch.
func (uc *UpdateProjectUseCase) UpdatePosition(ctx context.Context, id string, pos project.Position) error {
	if id == "" {
		return &domain.ValidationError{Field: "id", Value: id, Message: "is required"}
	}
	return uc.projects.UpdatePosition(ctx, id, pos)
}

// UpdateMultiplePositions replaces positions for several projects at once
// without a pre-fetch.
func (uc *UpdateProjectUseCase) UpdateMultiplePositions(ctx context.Context, positions map[string]project.Position) error {
	return uc.projects.UpdateMultiplePositions(ctx, positions)
}
