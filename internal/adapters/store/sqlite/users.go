package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

// Compile-time interface check.
var _ ports.UserRepository = (*userRepo)(nil)

type userRepo struct {
	store *Store
}

const userColumns = `id, email, display_name, photo_url, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*user.User, error) {
	var (
		u        user.User
		photoURL sql.NullString
	)
	err := scanner.Scan(&u.ID, &u.Email, &u.DisplayName, &photoURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if photoURL.Valid {
		u.PhotoURL = &photoURL.String
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	stored := *u
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	var photoURL any
	if stored.PhotoURL != nil {
		photoURL = *stored.PhotoURL
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO users(`+userColumns+`) VALUES (?,?,?,?,?,?)`,
		stored.ID, stored.Email, stored.DisplayName, photoURL, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, &domain.InfrastructureError{Op: "insert user", Err: err}
	}
	return &stored, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *userRepo) Update(ctx context.Context, id string, changes user.ProfileUpdate) error {
	var (
		fields []string
		args   []any
	)
	if changes.DisplayName != nil {
		fields = append(fields, "display_name = ?")
		args = append(args, *changes.DisplayName)
	}
	if changes.RemovePhotoURL {
		fields = append(fields, "photo_url = NULL")
	} else if changes.PhotoURL != nil {
		fields = append(fields, "photo_url = ?")
		args = append(args, *changes.PhotoURL)
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, r.store.clock.Now(), id)

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return &domain.InfrastructureError{Op: "update user", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return &domain.InfrastructureError{Op: "delete user", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
