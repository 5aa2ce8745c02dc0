package taskexec

import (
	"context"
	"sync"
	"time"
)

// State is the lifecycle position of a Future.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

// Terminal reports whether the state is final. A Future transitions into a
// terminal state at most once and is never mutated afterwards.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future is the handle to the eventual outcome of one submitted operation.
// It is safe for concurrent use. The executor is the single writer of its
// state; any number of goroutines may read it or register callbacks.
//
// Callbacks never run inline in the registering goroutine. They are always
// delivered on the executor's coordinating goroutine, in order: success or
// failure handlers first, completion handlers after, and never both success
// and failure for the same Future. Cancellation fires completion handlers
// only.
type Future[R any] struct {
	id   string
	loop *deliveryLoop

	mu           sync.Mutex
	state        State
	value        R
	err          error
	cancelWanted bool
	abort        func() // cooperative cancellation hook, set at construction
	grace        time.Duration
	forceTimer   *time.Timer
	onTerminal   func() // executor bookkeeping, runs once before delivery

	successFns    []func(R)
	failureFns    []func(error)
	completionFns []func()

	done chan struct{}
}

func newFuture[R any](loop *deliveryLoop, id string, grace time.Duration) *Future[R] {
	return &Future[R]{
		id:    id,
		loop:  loop,
		grace: grace,
		done:  make(chan struct{}),
	}
}

// ID returns the identifier assigned at submission.
func (f *Future[R]) ID() string {
	return f.id
}

// State returns the current lifecycle state.
func (f *Future[R]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done returns a channel closed when the Future reaches a terminal state.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// OnSuccess registers a handler for the Succeeded outcome. If the Future is
// already terminal, the handler fires via the coordinating goroutine when the
// state is Succeeded, and is dropped otherwise.
func (f *Future[R]) OnSuccess(fn func(R)) {
	f.mu.Lock()
	if !f.state.Terminal() {
		f.successFns = append(f.successFns, fn)
		f.mu.Unlock()
		return
	}
	state, value := f.state, f.value
	f.mu.Unlock()

	if state == StateSucceeded {
		f.loop.post(func() { fn(value) })
	}
}

// OnFailure registers a handler for the Failed outcome. Cancellation is not
// failure: a cancelled Future never invokes failure handlers.
func (f *Future[R]) OnFailure(fn func(error)) {
	f.mu.Lock()
	if !f.state.Terminal() {
		f.failureFns = append(f.failureFns, fn)
		f.mu.Unlock()
		return
	}
	state, err := f.state, f.err
	f.mu.Unlock()

	if state == StateFailed {
		f.loop.post(func() { fn(err) })
	}
}

// OnCompletion registers a handler invoked on any terminal outcome, after
// the success or failure handlers for the same Future.
func (f *Future[R]) OnCompletion(fn func()) {
	f.mu.Lock()
	if !f.state.Terminal() {
		f.completionFns = append(f.completionFns, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.loop.post(fn)
}

// Cancel requests cooperative cancellation. It reports whether the request
// was accepted, i.e. the Future was neither terminal nor already flagged.
//
// Cancel does not itself transition state. A pending task resolves Cancelled
// when a worker picks it up and observes the flag; a running operation is
// interrupted through its context. If the operation has not returned once the
// executor's grace period elapses, the Future is forcibly resolved Cancelled
// and the operation's eventual outcome is dropped. External side effects of
// such an abandoned operation are of unknown completeness; callers performing
// cleanup must guard against partially written outputs.
func (f *Future[R]) Cancel() bool {
	f.mu.Lock()
	if f.state.Terminal() || f.cancelWanted {
		f.mu.Unlock()
		return false
	}
	f.cancelWanted = true
	abort := f.abort
	if f.grace > 0 {
		f.forceTimer = time.AfterFunc(f.grace, f.cancelNow)
	}
	f.mu.Unlock()

	if abort != nil {
		abort()
	}
	return true
}

// CancelRequested reports whether Cancel has been accepted.
func (f *Future[R]) CancelRequested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelWanted
}

// Await blocks until the Future is terminal and returns its outcome. A
// cancelled Future yields ErrCancelled.
//
// Await must not be called from a callback: callbacks run on the coordinating
// goroutine, and blocking it prevents the very delivery being awaited.
func (f *Future[R]) Await() (R, error) {
	<-f.done
	return f.outcome()
}

// AwaitContext is Await with a deadline. The Future itself is unaffected when
// ctx expires first; only the wait is abandoned.
func (f *Future[R]) AwaitContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.outcome()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (f *Future[R]) outcome() (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// markRunning moves Pending to Running when a worker picks the task up.
// Returns false if the Future already left Pending (forced cancellation won).
func (f *Future[R]) markRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return false
	}
	f.state = StateRunning
	return true
}

// resolve performs the single terminal transition and schedules callback
// delivery. Reports whether this call won the transition; late outcomes from
// abandoned operations lose here and are dropped.
func (f *Future[R]) resolve(state State, value R, err error) bool {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return false
	}
	f.state = state
	f.value = value
	f.err = err
	if f.forceTimer != nil {
		f.forceTimer.Stop()
		f.forceTimer = nil
	}
	succ, fail, comp := f.successFns, f.failureFns, f.completionFns
	f.successFns, f.failureFns, f.completionFns = nil, nil, nil
	onTerminal := f.onTerminal
	f.onTerminal = nil
	f.mu.Unlock()

	// Executor bookkeeping first, so anyone woken by done observes the
	// active-futures invariant already restored.
	if onTerminal != nil {
		onTerminal()
	}
	close(f.done)

	f.loop.post(func() {
		switch state {
		case StateSucceeded:
			for _, fn := range succ {
				fn(value)
			}
		case StateFailed:
			for _, fn := range fail {
				fn(err)
			}
		}
		for _, fn := range comp {
			fn()
		}
	})
	return true
}

func (f *Future[R]) succeed(value R) bool {
	return f.resolve(StateSucceeded, value, nil)
}

func (f *Future[R]) fail(err error) bool {
	var zero R
	return f.resolve(StateFailed, zero, err)
}

// cancelNow records the Cancelled terminal state. Used when a worker observes
// the flag before running the operation, when a cancelled operation returns,
// and as the forced tier after the grace period.
func (f *Future[R]) cancelNow() {
	var zero R
	f.resolve(StateCancelled, zero, ErrCancelled)
}
