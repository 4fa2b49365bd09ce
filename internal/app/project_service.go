package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planfold/planfold/internal/app/dto"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/platform/cache"
	"github.com/planfold/planfold/internal/ports"
)

// Cache key prefixes used by the application services and invalidated by the
// event reactors.
const (
	cachePrefixProject      = "project"
	cachePrefixUserProjects = "user-projects"
)

// Compile-time check that ProjectApplicationService implements ports.ProjectService.
var _ ports.ProjectService = (*ProjectApplicationService)(nil)

// ProjectApplicationService adapts the project use cases to the DTO boundary.
// Every failure is re-thrown wrapped with an operation-specific prefix,
// preserving the original message. This is the single error translation
// boundary. No retries, no partial rollback: the repository is atomic per
// call.
type ProjectApplicationService struct {
	createProject   *CreateProjectUseCase
	getUserProjects *GetUserProjectsUseCase
	updateProject   *UpdateProjectUseCase
	projects        ports.ProjectRepository
	bus             *event.Bus
	cache           *cache.Cache
	logger          *slog.Logger
}

// NewProjectApplicationService wires the service and its use cases. The bus,
// cache and logger are optional: nil disables event publication, read
// caching and logging respectively.
func NewProjectApplicationService(
	projects ports.ProjectRepository,
	bus *event.Bus,
	c *cache.Cache,
	clock domain.Clock,
	logger *slog.Logger,
) *ProjectApplicationService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectApplicationService{
		createProject:   NewCreateProjectUseCase(projects, bus, clock),
		getUserProjects: NewGetUserProjectsUseCase(projects),
		updateProject:   NewUpdateProjectUseCase(projects, bus, clock),
		projects:        projects,
		bus:             bus,
		cache:           c,
		logger:          logger,
	}
}

// CreateProject validates and persists a new project.
func (s *ProjectApplicationService) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	s.logger.InfoContext(ctx, "creating project", slog.String("owner_id", req.OwnerID))

	in, err := req.ToNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	created, err := s.createProject.Execute(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create project",
			slog.String("operation", "CreateProject"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	resp := dto.FromProject(created)
	return &resp, nil
}

// GetProject returns a single project by id, read through the cache.
func (s *ProjectApplicationService) GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	key := cache.Key(cachePrefixProject, id)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if resp, ok := v.(dto.ProjectResponse); ok {
				clone := resp.Clone()
				return &clone, nil
			}
		}
	}

	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "project", ID: id}
		}
		s.logger.ErrorContext(ctx, "failed to get project",
			slog.String("operation", "GetProject"),
			slog.String("project_id", id),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	resp := dto.FromProject(p)
	if s.cache != nil {
		s.cache.Set(key, resp.Clone())
	}
	return &resp, nil
}

// GetUserProjects returns a user's projects and position map, read through
// the cache.
func (s *ProjectApplicationService) GetUserProjects(ctx context.Context, userID string) (*dto.UserProjectsResponse, error) {
	key := cache.Key(cachePrefixUserProjects, userID)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if resp, ok := v.(dto.UserProjectsResponse); ok {
				clone := resp.Clone()
				return &clone, nil
			}
		}
	}

	result, err := s.getUserProjects.Execute(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get user projects",
			slog.String("operation", "GetUserProjects"),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to get user projects: %w", err)
	}

	resp := dto.UserProjectsResponse{
		Projects:  dto.FromProjectList(result.Projects),
		Positions: result.Positions,
	}
	if s.cache != nil {
		s.cache.Set(key, resp.Clone())
	}
	return &resp, nil
}

// UpdateProject applies a validated partial update and returns the refreshed
// project.
func (s *ProjectApplicationService) UpdateProject(ctx context.Context, id string, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	s.logger.InfoContext(ctx, "updating project", slog.String("project_id", id))

	changes, err := req.ToChanges()
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := s.updateProject.Execute(ctx, id, changes); err != nil {
		s.logger.ErrorContext(ctx, "failed to update project",
			slog.String("operation", "UpdateProject"),
			slog.String("project_id", id),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	updated, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	resp := dto.FromProject(updated)
	return &resp, nil
}

// UpdateProjectPosition replaces one project's map position.
func (s *ProjectApplicationService) UpdateProjectPosition(ctx context.Context, id string, pos project.Position) error {
	if err := project.ValidatePosition(&pos); err != nil {
		return fmt.Errorf("failed to update project position: %w", err)
	}
	if err := s.updateProject.UpdatePosition(ctx, id, pos); err != nil {
		s.logger.ErrorContext(ctx, "failed to update project position",
			slog.String("operation", "UpdateProjectPosition"),
			slog.String("project_id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to update project position: %w", err)
	}

	// Position moves publish no event, so the read cache is evicted here.
	if s.cache != nil {
		s.cache.Delete(cache.Key(cachePrefixProject, id))
		s.cache.DeletePrefix(cachePrefixUserProjects)
	}
	return nil
}

// UpdateMultipleProjectPositions replaces positions for several projects at
// once.
func (s *ProjectApplicationService) UpdateMultipleProjectPositions(ctx context.Context, positions map[string]project.Position) error {
	for _, pos := range positions {
		p := pos
		if err := project.ValidatePosition(&p); err != nil {
			return fmt.Errorf("failed to update multiple project positions: %w", err)
		}
	}
	if err := s.updateProject.UpdateMultiplePositions(ctx, positions); err != nil {
		s.logger.ErrorContext(ctx, "failed to update multiple project positions",
			slog.String("operation", "UpdateMultipleProjectPositions"),
			slog.Int("count", len(positions)),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to update multiple project positions: %w", err)
	}

	if s.cache != nil {
		for id := range positions {
			s.cache.Delete(cache.Key(cachePrefixProject, id))
		}
		s.cache.DeletePrefix(cachePrefixUserProjects)
	}
	return nil
}

// DeleteProject removes a project permanently and publishes ProjectDeleted.
func (s *ProjectApplicationService) DeleteProject(ctx context.Context, id string) error {
	s.logger.InfoContext(ctx, "deleting project", slog.String("project_id", id))

	if err := s.projects.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete project",
			slog.String("operation", "DeleteProject"),
			slog.String("project_id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, event.NewProjectDeleted(id))
	}
	return nil
}

// SubscribeToUserProjects streams the user's project list through the DTO
// projection.
func (s *ProjectApplicationService) SubscribeToUserProjects(ctx context.Context, userID string, callback func(dto.UserProjectsResponse)) (func(), error) {
	unsubscribe, err := s.projects.SubscribeToUserProjects(ctx, userID, func(result ports.UserProjects) {
		callback(dto.UserProjectsResponse{
			Projects:  dto.FromProjectList(result.Projects),
			Positions: result.Positions,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to user projects: %w", err)
	}
	return unsubscribe, nil
}
