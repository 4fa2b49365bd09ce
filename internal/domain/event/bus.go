package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler reacts to a published event. Returned errors (and panics) are
// logged and isolated; they never reach the publisher or sibling handlers.
type Handler func(ctx context.Context, evt Event) error

// Middleware transforms an event before delivery. Returning a modified (or
// unchanged) event passes it to the next stage. Returning nil cancels
// delivery silently; returning an error cancels delivery and is logged.
type Middleware func(ctx context.Context, evt Event) (*Event, error)

// subscription pairs a handler with a token so unsubscribe can remove
// exactly this registration even when the same function value is registered
// twice.
type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe dispatcher with a middleware
// pipeline. Delivery is best-effort, at-most-once per currently registered
// handler: no replay, no durable queue.
//
// Registry mutation (Subscribe, Use, Clear, unsubscribe) is guarded by a
// mutex and safe for concurrent use. Publish snapshots the registries, so
// handlers registered mid-publish do not receive the in-flight event.
type Bus struct {
	mu             sync.RWMutex
	nextID         uint64
	handlers       map[string][]subscription
	middlewares    []Middleware
	logger         *slog.Logger
	onPublish      func(ctx context.Context, eventType string)
	onHandlerError func(ctx context.Context, eventType string)
}

// New creates an empty Bus. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

// Default is the process-wide shared bus for production wiring. Tests and
// isolated subsystems should construct their own with New.
var Default = New(slog.Default())

// Subscribe registers a handler for an event type and returns an idempotent
// unsubscribe function: calling it more than once, or after the handler was
// already removed, is a no-op.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Instrument installs optional dispatch hooks: onPublish fires once per
// event that clears the middleware chain, onHandlerError once per failed or
// panicked handler. Either may be nil. Hooks must be fast and must not
// publish on the same bus.
func (b *Bus) Instrument(onPublish, onHandlerError func(ctx context.Context, eventType string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPublish = onPublish
	b.onHandlerError = onHandlerError
}

// Use appends a middleware stage. Stages run in registration order, each
// receiving the event produced by the previous one.
func (b *Bus) Use(mw Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, mw)
}

// Clear drops all handlers and middlewares. Intended for test isolation and
// teardown.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]subscription)
	b.middlewares = nil
}

// Publish runs the event through the middleware chain sequentially, then
// invokes all handlers registered for the resulting event's type
// concurrently, blocking until every handler returns.
//
// A middleware error aborts delivery entirely (fail closed) and is logged; a
// nil event from a middleware suppresses delivery silently (the designed
// cancellation mechanism). Handler errors and panics are logged per handler
// and never prevent sibling handlers from running. Publish itself never
// fails: publishing with zero subscribers is a no-op.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	middlewares := make([]Middleware, len(b.middlewares))
	copy(middlewares, b.middlewares)
	b.mu.RUnlock()

	current := evt
	for _, mw := range middlewares {
		next, err := b.applyMiddleware(ctx, mw, current)
		if err != nil {
			b.logger.ErrorContext(ctx, "event middleware failed, delivery aborted",
				slog.String("event_type", evt.Type),
				slog.String("event_id", evt.ID),
				slog.Any("error", err),
			)
			return
		}
		if next == nil {
			b.logger.DebugContext(ctx, "event suppressed by middleware",
				slog.String("event_type", evt.Type),
				slog.String("event_id", evt.ID),
			)
			return
		}
		current = *next
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[current.Type]))
	copy(subs, b.handlers[current.Type])
	onPublish := b.onPublish
	onHandlerError := b.onHandlerError
	b.mu.RUnlock()

	if onPublish != nil {
		onPublish(ctx, current.Type)
	}

	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			if err := b.invoke(ctx, h, current); err != nil {
				b.logger.ErrorContext(ctx, "event handler failed",
					slog.String("event_type", current.Type),
					slog.String("event_id", current.ID),
					slog.Any("error", err),
				)
				if onHandlerError != nil {
					onHandlerError(ctx, current.Type)
				}
			}
		}(s.handler)
	}
	wg.Wait()
}

// applyMiddleware runs one middleware stage, converting a panic into an
// error so a faulty stage cannot take down the publisher.
func (b *Bus) applyMiddleware(ctx context.Context, mw Middleware, evt Event) (out *Event, err error) {
	defer func() {
		if v := recover(); v != nil {
			out = nil
			err = fmt.Errorf("middleware panic: %v", v)
		}
	}()
	return mw(ctx, evt)
}

// invoke runs one handler, converting a panic into an error.
func (b *Bus) invoke(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("handler panic: %v", v)
		}
	}()
	return h(ctx, evt)
}
