// Package sqlite persists projects, todos and users in an embedded SQLite
// database. It implements the repository ports and pushes change
// notifications to project subscribers after every successful write.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL,
	deadline    TIMESTAMP,
	progress    INTEGER NOT NULL DEFAULT 0,
	owner_id    TEXT NOT NULL,
	position    TEXT,
	subtasks    TEXT NOT NULL DEFAULT '[]',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);

CREATE TABLE IF NOT EXISTS todos (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_project ON todos(project_id);

CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	photo_url    TEXT,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
`

// Store owns the database handle and the watcher registry shared by the
// repositories.
type Store struct {
	db       *sql.DB
	clock    domain.Clock
	watchers *watcherRegistry
}

// Config holds the settings needed to open a store.
type Config struct {
	// Path is a filesystem path or ":memory:" for an ephemeral database.
	Path string

	// BusyTimeout bounds how long a write waits on a locked database.
	BusyTimeout time.Duration
}

// Open opens (creating if necessary) the database at cfg.Path with foreign
// keys on, and applies the schema. A nil clock falls back to the system
// clock.
func Open(cfg Config, clock domain.Clock) (*Store, error) {
	if clock == nil {
		clock = domain.SystemClock{}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", cfg.Path)
	if cfg.BusyTimeout > 0 {
		dsn += fmt.Sprintf("&_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Path, err)
	}
	// The shared-cache in-memory database disappears when the last
	// connection closes; a single connection also sidesteps SQLITE_BUSY on
	// concurrent writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{
		db:       db,
		clock:    clock,
		watchers: newWatcherRegistry(),
	}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Projects returns the project repository backed by this store.
func (s *Store) Projects() ports.ProjectRepository {
	return &projectRepo{store: s}
}

// Todos returns the todo repository backed by this store.
func (s *Store) Todos() ports.TodoRepository {
	return &todoRepo{store: s}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() ports.UserRepository {
	return &userRepo{store: s}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "sqlite"
}

// HealthCheck implements ports.HealthChecker by pinging the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}
