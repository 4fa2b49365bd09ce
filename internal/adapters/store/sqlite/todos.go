package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/todo"
	"github.com/planfold/planfold/internal/ports"
)

// Compile-time interface check.
var _ ports.TodoRepository = (*todoRepo)(nil)

type todoRepo struct {
	store *Store
}

const todoColumns = `id, title, description, completed, project_id, created_at, updated_at`

func scanTodo(scanner interface{ Scan(...any) error }) (*todo.Todo, error) {
	var t todo.Todo
	err := scanner.Scan(&t.ID, &t.Title, &t.Description, &t.Completed,
		&t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func (r *todoRepo) Create(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	stored := *t
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO todos(`+todoColumns+`) VALUES (?,?,?,?,?,?,?)`,
		stored.ID, stored.Title, stored.Description, stored.Completed,
		stored.ProjectID, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, &domain.InfrastructureError{Op: "insert todo", Err: err}
	}
	return &stored, nil
}

func (r *todoRepo) GetByID(ctx context.Context, id string) (*todo.Todo, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	return scanTodo(row)
}

func (r *todoRepo) GetByProjectID(ctx context.Context, projectID string) ([]todo.Todo, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, &domain.InfrastructureError{Op: "query todos", Err: err}
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.InfrastructureError{Op: "scan todos", Err: err}
	}
	return todos, nil
}

func (r *todoRepo) Update(ctx context.Context, id string, changes todo.Update) error {
	var (
		fields []string
		args   []any
	)
	if changes.Title != nil {
		fields = append(fields, "title = ?")
		args = append(args, *changes.Title)
	}
	if changes.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, *changes.Description)
	}
	if changes.Completed != nil {
		fields = append(fields, "completed = ?")
		args = append(args, *changes.Completed)
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, r.store.clock.Now(), id)

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE todos SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return &domain.InfrastructureError{Op: "update todo", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *todoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return &domain.InfrastructureError{Op: "delete todo", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
