// Package fanout provides a generic, bounded-concurrency fan-out helper.
// It runs a function across a slice of items using a fixed number of worker
// goroutines, preserving input order in results. The store uses it to apply
// batch position writes concurrently with per-item error capture.
package fanout

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item: Value on success,
// a non-nil Err on failure.
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most maxWorkers concurrent
// goroutines and blocks until all complete. Results come back in input
// order. A goroutine still waiting for a semaphore slot when ctx is
// canceled records ctx.Err() without calling fn; goroutines that already
// hold a slot run to completion. maxWorkers must be >= 1.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}

	results := make([]Result[R], len(items))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it T) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result[R]{Err: ctx.Err()}
				return
			}

			val, err := fn(ctx, it)
			results[idx] = Result[R]{Value: val, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
