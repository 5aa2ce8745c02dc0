package taskexec

import "context"

// Operation is a single unit of deferred, fallible work. It must be safe to
// run on any worker goroutine and must not assume affinity to a particular
// one. Cooperative cancellation is delivered through ctx: operations that
// honour it stop promptly when cancelled, operations that ignore it degrade
// to ignore-result semantics (the executor drops their eventual outcome).
//
// Side effects (filesystem writes, spawned subprocesses) are the operation's
// own responsibility and are opaque to the executor.
type Operation[R any] func(ctx context.Context) (R, error)

// task pairs a submitted operation with its identity, its cancellable context
// and the Future observing its outcome. Owned exclusively by the executor
// from submission until the terminal outcome is delivered; never mutated
// after creation.
type task[R any] struct {
	id     string
	op     Operation[R]
	ctx    context.Context
	future *Future[R]
}
