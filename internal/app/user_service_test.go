package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/planfold/planfold/internal/app"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/user"
)

func seedUser(t *testing.T, repo *fakeUserRepo) *user.User {
	t.Helper()
	u, err := user.Create("ada@example.com", "Ada", nil, testNow)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	stored, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	repo.creates = 0
	return stored
}

func TestUserService_EnsureUser_CreatesOnFirstSignIn(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	got, err := svc.EnsureUser(context.Background(), &user.User{
		Email:       "ada@example.com",
		DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("EnsureUser() error: %v", err)
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d, want 1", repo.creates)
	}
	if got.ID == "" || got.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestUserService_EnsureUser_RefreshesChangedProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	seeded := seedUser(t, repo)
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	photo := "https://example.com/ada.png"
	got, err := svc.EnsureUser(context.Background(), &user.User{
		Email:       seeded.Email,
		DisplayName: "Ada Lovelace",
		PhotoURL:    &photo,
	})
	if err != nil {
		t.Fatalf("EnsureUser() error: %v", err)
	}
	if repo.creates != 0 {
		t.Errorf("creates = %d, want 0", repo.creates)
	}
	if repo.updates != 1 {
		t.Errorf("updates = %d, want 1", repo.updates)
	}
	if got.DisplayName != "Ada Lovelace" {
		t.Errorf("DisplayName = %q, want refreshed name", got.DisplayName)
	}
	if got.PhotoURL == nil || *got.PhotoURL != photo {
		t.Errorf("PhotoURL = %v, want %q", got.PhotoURL, photo)
	}
}

func TestUserService_EnsureUser_SkipsUpdateWhenUnchanged(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	seeded := seedUser(t, repo)
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	got, err := svc.EnsureUser(context.Background(), &user.User{
		Email:       seeded.Email,
		DisplayName: seeded.DisplayName,
	})
	if err != nil {
		t.Fatalf("EnsureUser() error: %v", err)
	}
	if repo.updates != 0 {
		t.Errorf("updates = %d, want 0", repo.updates)
	}
	if got.ID != seeded.ID {
		t.Errorf("ID = %q, want %q", got.ID, seeded.ID)
	}
}

func TestUserService_EnsureUser_IdenticalSignInNeverWrites(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	photo := "https://example.com/ada.png"
	asserted := &user.User{
		Email:       "ada@example.com",
		DisplayName: "Ada",
		PhotoURL:    &photo,
	}

	if _, err := svc.EnsureUser(context.Background(), asserted); err != nil {
		t.Fatalf("first EnsureUser() error: %v", err)
	}
	repo.creates = 0
	repo.updates = 0

	// A token re-asserting the same name and photo on every request must
	// stay a pure read.
	samePhoto := photo
	got, err := svc.EnsureUser(context.Background(), &user.User{
		Email:       asserted.Email,
		DisplayName: asserted.DisplayName,
		PhotoURL:    &samePhoto,
	})
	if err != nil {
		t.Fatalf("second EnsureUser() error: %v", err)
	}
	if repo.creates != 0 {
		t.Errorf("creates = %d, want 0", repo.creates)
	}
	if repo.updates != 0 {
		t.Errorf("updates = %d, want 0", repo.updates)
	}
	if got.PhotoURL == nil || *got.PhotoURL != photo {
		t.Errorf("PhotoURL = %v, want %q", got.PhotoURL, photo)
	}
}

func TestUserService_EnsureUser_RequiresEmail(t *testing.T) {
	t.Parallel()

	svc := app.NewUserApplicationService(newFakeUserRepo(), testClock(), nil)

	for _, u := range []*user.User{nil, {DisplayName: "No Email"}} {
		_, err := svc.EnsureUser(context.Background(), u)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("EnsureUser(%+v) error = %v, want ErrValidation", u, err)
		}
	}
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	t.Parallel()

	svc := app.NewUserApplicationService(newFakeUserRepo(), testClock(), nil)

	_, err := svc.GetUser(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound in chain", err)
	}
	var nfe *domain.NotFoundError
	if !errors.As(err, &nfe) || nfe.Resource != "user" {
		t.Errorf("error = %v, want NotFoundError for user", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	seeded := seedUser(t, repo)
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	name := "Countess"
	got, err := svc.UpdateProfile(context.Background(), seeded.ID, user.ProfileUpdate{DisplayName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if got.DisplayName != "Countess" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Countess")
	}
}

func TestUserService_UpdateProfile_RequiresID(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := app.NewUserApplicationService(repo, testClock(), nil)

	_, err := svc.UpdateProfile(context.Background(), "", user.ProfileUpdate{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to update profile: ") {
		t.Errorf("error = %q, want the profile prefix", err.Error())
	}
	if repo.updates != 0 {
		t.Errorf("updates = %d, want 0", repo.updates)
	}
}

func TestUserService_UpdateProfile_NotFound(t *testing.T) {
	t.Parallel()

	svc := app.NewUserApplicationService(newFakeUserRepo(), testClock(), nil)

	_, err := svc.UpdateProfile(context.Background(), "missing", user.ProfileUpdate{})
	var nfe *domain.NotFoundError
	if !errors.As(err, &nfe) || nfe.Resource != "user" || nfe.ID != "missing" {
		t.Errorf("error = %v, want NotFoundError{user, missing}", err)
	}
}
