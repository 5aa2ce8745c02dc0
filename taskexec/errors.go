package taskexec

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is the outcome carried by a Future that reached the
	// Cancelled state. It is distinct from any operation failure so callers
	// can tell "didn't finish because I asked it not to" from "finished badly".
	ErrCancelled = errors.New("task cancelled")

	// ErrExecutorClosed is returned by Submit after Shutdown has been called.
	ErrExecutorClosed = errors.New("executor is shut down")

	// ErrEmptyGather is returned by Gather for an empty input collection.
	ErrEmptyGather = errors.New("gather requires at least one future")

	// ErrMixedGather is returned by Gather when the input futures do not
	// share a delivery loop. Aggregation state is only safe to mutate from a
	// single coordinating goroutine.
	ErrMixedGather = errors.New("gather requires futures from the same executor")

	// ErrShutdownTimeout is returned when a graceful shutdown could not drain
	// all in-flight work within the allotted time.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	errQueueClosed = errors.New("task queue closed")
)

// GatherError reports the first child failure observed by a combined future.
// Index refers to the child's position in the input collection, which is not
// necessarily the first position in input order: the first child to report on
// the coordinating goroutine wins.
type GatherError struct {
	Index int
	Err   error
}

func (e *GatherError) Error() string {
	return fmt.Sprintf("gathered future %d failed: %v", e.Index, e.Err)
}

func (e *GatherError) Unwrap() error {
	return e.Err
}
