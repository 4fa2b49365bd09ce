package sqlite

import (
	"context"
	"sync"

	"github.com/planfold/planfold/internal/ports"
)

// watcherRegistry tracks live project subscriptions per user. SQLite has no
// change feed, so the repositories notify the registry after every
// successful project write.
type watcherRegistry struct {
	mu       sync.RWMutex
	nextID   uint64
	watchers map[string]map[uint64]func(ports.UserProjects)
}

func newWatcherRegistry() *watcherRegistry {
	return &watcherRegistry{
		watchers: make(map[string]map[uint64]func(ports.UserProjects)),
	}
}

// add registers a callback for a user and returns an idempotent remove
// function.
func (w *watcherRegistry) add(userID string, callback func(ports.UserProjects)) func() {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	if w.watchers[userID] == nil {
		w.watchers[userID] = make(map[uint64]func(ports.UserProjects))
	}
	w.watchers[userID][id] = callback
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.watchers[userID], id)
		if len(w.watchers[userID]) == 0 {
			delete(w.watchers, userID)
		}
	}
}

// snapshot returns the callbacks registered for a user.
func (w *watcherRegistry) snapshot(userID string) []func(ports.UserProjects) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	callbacks := make([]func(ports.UserProjects), 0, len(w.watchers[userID]))
	for _, cb := range w.watchers[userID] {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}

// notify re-reads the user's project set and delivers it to every watcher.
// Read failures are swallowed; the next successful write delivers a fresh
// snapshot.
func (s *Store) notify(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	callbacks := s.watchers.snapshot(userID)
	if len(callbacks) == 0 {
		return
	}

	repo := &projectRepo{store: s}
	result, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return
	}
	for _, cb := range callbacks {
		cb(*result)
	}
}
