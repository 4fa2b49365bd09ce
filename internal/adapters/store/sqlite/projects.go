package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/project"
	"github.com/planfold/planfold/internal/platform/fanout"
	"github.com/planfold/planfold/internal/ports"
)

// maxPositionWriters bounds the concurrency of batch position updates.
const maxPositionWriters = 4

// Compile-time interface check.
var _ ports.ProjectRepository = (*projectRepo)(nil)

type projectRepo struct {
	store *Store
}

const projectColumns = `id, title, description, priority, deadline, progress, owner_id, position, subtasks, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (*project.Project, error) {
	var (
		p        project.Project
		deadline sql.NullTime
		position sql.NullString
		subtasks string
	)
	err := scanner.Scan(&p.ID, &p.Title, &p.Description, &p.Priority, &deadline,
		&p.Progress, &p.OwnerID, &position, &subtasks, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		t := deadline.Time.UTC()
		p.Deadline = &t
	}
	if position.Valid {
		var pos project.Position
		if err := json.Unmarshal([]byte(position.String), &pos); err != nil {
			return nil, fmt.Errorf("decoding position for project %s: %w", p.ID, err)
		}
		p.Position = &pos
	}
	if err := json.Unmarshal([]byte(subtasks), &p.Subtasks); err != nil {
		return nil, fmt.Errorf("decoding subtasks for project %s: %w", p.ID, err)
	}
	if p.Subtasks == nil {
		p.Subtasks = []project.Subtask{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func encodePosition(pos *project.Position) (any, error) {
	if pos == nil {
		return nil, nil
	}
	data, err := json.Marshal(pos)
	if err != nil {
		return nil, fmt.Errorf("encoding position: %w", err)
	}
	return string(data), nil
}

func encodeSubtasks(subtasks []project.Subtask) (string, error) {
	if subtasks == nil {
		subtasks = []project.Subtask{}
	}
	data, err := json.Marshal(subtasks)
	if err != nil {
		return "", fmt.Errorf("encoding subtasks: %w", err)
	}
	return string(data), nil
}

func (r *projectRepo) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	position, err := encodePosition(stored.Position)
	if err != nil {
		return nil, err
	}
	subtasks, err := encodeSubtasks(stored.Subtasks)
	if err != nil {
		return nil, err
	}

	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO projects(`+projectColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		stored.ID, stored.Title, stored.Description, string(stored.Priority), stored.Deadline,
		stored.Progress, stored.OwnerID, position, subtasks, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, &domain.InfrastructureError{Op: "insert project", Err: err}
	}

	r.store.notify(ctx, stored.OwnerID)
	return &stored, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*project.Project, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (r *projectRepo) GetByUserID(ctx context.Context, userID string) (*ports.UserProjects, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, &domain.InfrastructureError{Op: "query projects", Err: err}
	}
	defer rows.Close()

	result := &ports.UserProjects{
		Projects:  []project.Project{},
		Positions: map[string]project.Position{},
	}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result.Projects = append(result.Projects, *p)
		if p.Position != nil {
			result.Positions[p.ID] = *p.Position
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.InfrastructureError{Op: "scan projects", Err: err}
	}
	return result, nil
}

func (r *projectRepo) Update(ctx context.Context, id string, changes project.Update) error {
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
	if changes.Priority != nil {
		fields = append(fields, "priority = ?")
		args = append(args, string(*changes.Priority))
	}
	if changes.Deadline != nil {
		fields = append(fields, "deadline = ?")
		args = append(args, *changes.Deadline)
	}
	if changes.Progress != nil {
		fields = append(fields, "progress = ?")
		args = append(args, *changes.Progress)
	}
	if changes.Position != nil {
		position, err := encodePosition(changes.Position)
		if err != nil {
			return err
		}
		fields = append(fields, "position = ?")
		args = append(args, position)
	}
	if changes.Subtasks != nil {
		subtasks, err := encodeSubtasks(changes.Subtasks)
		if err != nil {
			return err
		}
		fields = append(fields, "subtasks = ?")
		args = append(args, subtasks)
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, r.store.clock.Now(), id)

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE projects SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return &domain.InfrastructureError{Op: "update project", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}

	r.store.notify(ctx, r.ownerOf(ctx, id))
	return nil
}

func (r *projectRepo) UpdatePosition(ctx context.Context, id string, pos project.Position) error {
	position, err := encodePosition(&pos)
	if err != nil {
		return err
	}

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE projects SET position = ?, updated_at = ? WHERE id = ?`,
		position, r.store.clock.Now(), id)
	if err != nil {
		return &domain.InfrastructureError{Op: "update project position", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}

	r.store.notify(ctx, r.ownerOf(ctx, id))
	return nil
}

// UpdateMultiplePositions applies the batch with bounded concurrency and
// returns the first failure, if any. Owners of successfully written projects
// are still notified.
func (r *projectRepo) UpdateMultiplePositions(ctx context.Context, positions map[string]project.Position) error {
	type entry struct {
		id  string
		pos project.Position
	}
	entries := make([]entry, 0, len(positions))
	for id, pos := range positions {
		entries = append(entries, entry{id: id, pos: pos})
	}

	results := fanout.Run(ctx, maxPositionWriters, entries, func(ctx context.Context, e entry) (struct{}, error) {
		return struct{}{}, r.UpdatePosition(ctx, e.id, e.pos)
	})
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	ownerID := r.ownerOf(ctx, id)

	res, err := r.store.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return &domain.InfrastructureError{Op: "delete project", Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}

	r.store.notify(ctx, ownerID)
	return nil
}

func (r *projectRepo) SubscribeToUserProjects(ctx context.Context, userID string, callback func(ports.UserProjects)) (func(), error) {
	initial, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	unsubscribe := r.store.watchers.add(userID, callback)
	callback(*initial)
	return unsubscribe, nil
}

// ownerOf returns the project's owner id, or "" when the project is gone.
func (r *projectRepo) ownerOf(ctx context.Context, id string) string {
	var ownerID string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT owner_id FROM projects WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		return ""
	}
	return ownerID
}
