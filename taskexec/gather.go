package taskexec

import (
	"github.com/google/uuid"
)

// Gather combines a fixed, non-empty collection of futures into one parent
// Future that resolves once the aggregate outcome is known:
//
//   - Succeeded with the child values in input order, once every child
//     succeeds. Order matters so callers can match results back to inputs.
//   - Failed with a *GatherError wrapping the first child failure reported on
//     the coordinating goroutine. Remaining children keep running; their
//     outcomes are dropped by the parent, though each child Future still
//     carries its own final state for independent observers.
//   - Cancelled when the parent itself is cancelled. Cancelling the parent
//     requests cancellation on every child but does not force termination.
//
// A child cancelled independently of the parent counts as a failure: the
// parent fails with a *GatherError wrapping ErrCancelled.
//
// An empty input fails fast with ErrEmptyGather rather than producing a
// Future that can never resolve. All children must come from the same
// executor; mixing yields ErrMixedGather.
func Gather[R any](futures ...*Future[R]) (*Future[[]R], error) {
	if len(futures) == 0 {
		return nil, ErrEmptyGather
	}

	loop := futures[0].loop
	for _, f := range futures[1:] {
		if f.loop != loop {
			return nil, ErrMixedGather
		}
	}

	children := make([]*Future[R], len(futures))
	copy(children, futures)

	parent := newFuture[[]R](loop, uuid.NewString(), 0)
	parent.abort = func() {
		for _, c := range children {
			c.Cancel()
		}
	}

	// All aggregation state below is touched only from child callbacks, which
	// the shared loop serializes onto one goroutine.
	results := make([]R, len(children))
	remaining := len(children)

	for i, child := range children {
		child.OnSuccess(func(v R) {
			results[i] = v
		})
		child.OnFailure(func(err error) {
			parent.fail(&GatherError{Index: i, Err: err})
		})
		child.OnCompletion(func() {
			if child.State() == StateCancelled {
				if parent.CancelRequested() {
					parent.cancelNow()
				} else {
					parent.fail(&GatherError{Index: i, Err: ErrCancelled})
				}
			}
			remaining--
			if remaining == 0 {
				if parent.CancelRequested() {
					parent.cancelNow()
				} else {
					parent.succeed(results)
				}
			}
		})
	}

	return parent, nil
}
