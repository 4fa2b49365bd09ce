// Package user holds the User entity: an account profile decoupled from the
// external identity provider's own record.
package user

import (
	"strings"
	"time"

	"github.com/planfold/planfold/internal/domain"
)

// User represents an authenticated account profile. ID and Email are
// immutable after creation. PhotoURL is nullable; nil means no photo.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    *string   `json:"photoURL"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial update limited to the mutable profile fields.
// Nil fields are skipped. RemovePhotoURL clears the photo explicitly, which
// is distinct from leaving it untouched.
type ProfileUpdate struct {
	DisplayName    *string
	PhotoURL       *string
	RemovePhotoURL bool
}

// Create constructs a User with both timestamps stamped to now. Email is
// required; everything else is optional.
func Create(email, displayName string, photoURL *string, now time.Time) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &domain.ValidationError{Field: "email", Value: email, Message: "is required"}
	}

	return &User{
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyProfile merges the present profile fields and bumps UpdatedAt.
// Only displayName and photoURL can change; id and email never do.
func (u *User) ApplyProfile(p ProfileUpdate, now time.Time) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	switch {
	case p.RemovePhotoURL:
		u.PhotoURL = nil
	case p.PhotoURL != nil:
		u.PhotoURL = p.PhotoURL
	}
	u.UpdatedAt = now
}
