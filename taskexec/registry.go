package taskexec

import (
	"context"
	"sync"
	"time"
)

// Registry is the bookkeeping every task-submitting service keeps: a mapping
// from task id to the Future returned at submission. Track removes the entry
// automatically once the Future completes, so a long-running process does not
// accumulate dead entries. It is also the join point for the owning service's
// shutdown sequence.
//
// The Future's own state is the single point of truth for "is this work
// done"; the registry only ever derives its view from it.
type Registry[R any] struct {
	mu      sync.Mutex
	futures map[string]*Future[R]
}

// NewRegistry creates an empty registry.
func NewRegistry[R any]() *Registry[R] {
	return &Registry[R]{
		futures: make(map[string]*Future[R]),
	}
}

// Track records the future under its task id and arranges removal on
// completion.
func (r *Registry[R]) Track(f *Future[R]) {
	id := f.ID()

	r.mu.Lock()
	r.futures[id] = f
	r.mu.Unlock()

	f.OnCompletion(func() {
		r.Remove(id)
	})
}

// Get returns the tracked future for a task id, if still in flight.
func (r *Registry[R]) Get(id string) (*Future[R], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.futures[id]
	return f, ok
}

// Cancel requests cancellation of a tracked task. Reports false for unknown
// ids and for futures that no longer accept the request.
func (r *Registry[R]) Cancel(id string) bool {
	f, ok := r.Get(id)
	if !ok {
		return false
	}
	return f.Cancel()
}

// CancelAll requests cancellation on every tracked future and returns the
// number of accepted requests.
func (r *Registry[R]) CancelAll() int {
	r.mu.Lock()
	snapshot := make([]*Future[R], 0, len(r.futures))
	for _, f := range r.futures {
		snapshot = append(snapshot, f)
	}
	r.mu.Unlock()

	accepted := 0
	for _, f := range snapshot {
		if f.Cancel() {
			accepted++
		}
	}
	return accepted
}

// Remove drops an entry. Safe to call for ids that are not tracked.
func (r *Registry[R]) Remove(id string) {
	r.mu.Lock()
	delete(r.futures, id)
	r.mu.Unlock()
}

// Len returns the number of in-flight entries.
func (r *Registry[R]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.futures)
}

// Shutdown requests cancellation on every remaining entry and waits up to
// timeout for all of them to reach a terminal state (timeout <= 0 waits
// forever). Returns ErrShutdownTimeout if any future is still unresolved when
// the deadline passes.
func (r *Registry[R]) Shutdown(timeout time.Duration) error {
	r.mu.Lock()
	snapshot := make([]*Future[R], 0, len(r.futures))
	for _, f := range r.futures {
		snapshot = append(snapshot, f)
	}
	r.mu.Unlock()

	for _, f := range snapshot {
		f.Cancel()
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Await the snapshot, not the live map: Track removals race the waits.
	for _, f := range snapshot {
		if _, err := f.AwaitContext(ctx); err != nil && !f.State().Terminal() {
			return ErrShutdownTimeout
		}
	}
	return nil
}
