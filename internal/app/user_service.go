package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

// Compile-time check that UserApplicationService implements ports.UserService.
var _ ports.UserService = (*UserApplicationService)(nil)

// UserApplicationService manages account profiles asserted by the identity
// provider.
type UserApplicationService struct {
	users  ports.UserRepository
	clock  domain.Clock
	logger *slog.Logger
}

// NewUserApplicationService wires the service. A nil clock falls back to the
// system clock; a nil logger discards.
func NewUserApplicationService(users ports.UserRepository, clock domain.Clock, logger *slog.Logger) *UserApplicationService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserApplicationService{users: users, clock: clock, logger: logger}
}

// EnsureUser upserts the profile asserted by the identity provider: created
// on first sign-in, display name and photo refreshed on subsequent ones.
func (s *UserApplicationService) EnsureUser(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil || u.Email == "" {
		return nil, fmt.Errorf("failed to ensure user: %w",
			&domain.ValidationError{Field: "email", Message: "is required"})
	}

	existing, err := s.users.GetByEmail(ctx, u.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to ensure user: %w", err)
		}

		created, err := user.Create(u.Email, u.DisplayName, u.PhotoURL, s.clock.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to ensure user: %w", err)
		}
		stored, err := s.users.Create(ctx, created)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to ensure user",
				slog.String("operation", "EnsureUser"),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("failed to ensure user: %w", err)
		}
		s.logger.InfoContext(ctx, "user created", slog.String("user_id", stored.ID))
		return stored, nil
	}

	changes := user.ProfileUpdate{}
	if u.DisplayName != "" && u.DisplayName != existing.DisplayName {
		name := u.DisplayName
		changes.DisplayName = &name
	}
	if u.PhotoURL != nil && (existing.PhotoURL == nil || *existing.PhotoURL != *u.PhotoURL) {
		changes.PhotoURL = u.PhotoURL
	}
	if changes.DisplayName == nil && changes.PhotoURL == nil {
		return existing, nil
	}

	if err := s.users.Update(ctx, existing.ID, changes); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	refreshed, err := s.users.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return refreshed, nil
}

// GetUser returns a user profile by id.
func (s *UserApplicationService) GetUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "user", ID: id}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateProfile applies a partial profile update and returns the refreshed
// user.
func (s *UserApplicationService) UpdateProfile(ctx context.Context, id string, changes user.ProfileUpdate) (*user.User, error) {
	if id == "" {
		return nil, fmt.Errorf("failed to update profile: %w",
			&domain.ValidationError{Field: "id", Message: "is required"})
	}

	if err := s.users.Update(ctx, id, changes); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.NotFoundError{Resource: "user", ID: id}
		}
		s.logger.ErrorContext(ctx, "failed to update profile",
			slog.String("operation", "UpdateProfile"),
			slog.String("user_id", id),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}
