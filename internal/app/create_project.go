package app

import (
	"context"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/ports"
)

// CreateProjectUseCase constructs a project through the validating factory
// and persists it. Validation failures propagate before any repository call:
// the repository never observes an invalid entity.
type CreateProjectUseCase struct {
	projects ports.ProjectRepository
	bus      *event.Bus
	clock    domain.Clock
}

// NewCreateProjectUseCase wires the use case. A nil bus disables event
// publication; a nil clock falls back to the system clock.
func NewCreateProjectUseCase(projects ports.ProjectRepository, bus *event.Bus, clock domain.Clock) *CreateProjectUseCase {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CreateProjectUseCase{projects: projects, bus: bus, clock: clock}
}

// Execute validates and persists a new project, then publishes
// ProjectCreated. Returns exactly what the repository's Create resolved to.
func (uc *CreateProjectUseCase) Execute(ctx context.Context, in project.New) (*project.Project, error) {
	p, err := project.Create(in, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	created, err := uc.projects.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	if uc.bus != nil {
		uc.bus.Publish(ctx, event.NewProjectCreated(created.ID, *created))
	}
	return created, nil
}
