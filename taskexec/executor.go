package taskexec

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Executor runs submitted operations on a bounded pool of worker goroutines
// and delivers every Future callback on a single coordinating goroutine.
// Operations execute only on workers; callbacks execute only on the
// coordinating goroutine. That split is the central correctness property:
// callers may freely mutate non-thread-safe state from callbacks.
//
// An Executor is typically owned by one component, which calls Shutdown on
// teardown. A shared instance is fine as long as exactly one owner shuts it
// down.
//
// Type parameters:
//   - R: The result type produced by submitted operations
type Executor[R any] struct {
	grace       time.Duration
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	loop  *deliveryLoop
	queue *taskQueue[R]

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]*Future[R]

	closed      atomic.Bool
	workersDone chan struct{}
}

// New creates an Executor and starts its workers and coordinating goroutine.
// It is ready to accept submissions immediately.
func New[R any](opts ...Option) *Executor[R] {
	cfg := newConfig(opts...)
	ctx, cancel := context.WithCancel(context.Background())

	ex := &Executor[R]{
		grace:       cfg.grace,
		rateLimiter: cfg.rateLimiter,
		logger:      cfg.logger,
		loop:        newDeliveryLoop(),
		queue:       newTaskQueue[R](),
		ctx:         ctx,
		cancel:      cancel,
		active:      make(map[string]*Future[R]),
		workersDone: make(chan struct{}),
	}

	var g errgroup.Group
	for range cfg.workerCount {
		g.Go(ex.worker)
	}
	go func() {
		_ = g.Wait()
		close(ex.workersDone)
	}()

	ex.logger.Debug("executor started", "workers", cfg.workerCount, "grace", cfg.grace)
	return ex
}

// Submit enqueues an operation and returns its Future in the Pending state.
// Submit never blocks: the queue is unbounded and FIFO. It fails with
// ErrExecutorClosed after Shutdown.
func (ex *Executor[R]) Submit(op Operation[R]) (*Future[R], error) {
	if op == nil {
		return nil, errors.New("taskexec: nil operation")
	}
	if ex.closed.Load() {
		return nil, ErrExecutorClosed
	}

	id := uuid.NewString()
	taskCtx, taskCancel := context.WithCancel(ex.ctx)

	f := newFuture[R](ex.loop, id, ex.grace)
	f.abort = taskCancel
	f.onTerminal = func() {
		ex.mu.Lock()
		delete(ex.active, id)
		ex.mu.Unlock()
		taskCancel()
	}

	t := &task[R]{id: id, op: op, ctx: taskCtx, future: f}

	ex.mu.Lock()
	ex.active[id] = f
	ex.mu.Unlock()

	if err := ex.queue.Enqueue(t); err != nil {
		// Shutdown raced the submission; undo the bookkeeping.
		ex.mu.Lock()
		delete(ex.active, id)
		ex.mu.Unlock()
		taskCancel()
		return nil, ErrExecutorClosed
	}

	ex.logger.Debug("task submitted", "task_id", id)
	return f, nil
}

// CancelTask requests cancellation of the task with the given id. It reports
// whether the request was accepted; false means the id is unknown, the task
// already finished, or cancellation was already requested.
//
// Requesting cancellation is always safe. Forcing it is not: after the grace
// period the Future resolves Cancelled while the operation may still be
// mid-flight in a subprocess or blocking call, leaving temp files or child
// process handles orphaned. The cooperative tier is the primary path; the
// forced tier is a documented last resort.
func (ex *Executor[R]) CancelTask(id string) bool {
	ex.mu.Lock()
	f, ok := ex.active[id]
	ex.mu.Unlock()

	if !ok {
		return false
	}
	if !f.Cancel() {
		return false
	}
	ex.logger.Debug("task cancellation requested", "task_id", id)
	return true
}

// ActiveCount returns the number of futures that have not reached a terminal
// state, including tasks still waiting in the queue.
func (ex *Executor[R]) ActiveCount() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return len(ex.active)
}

// Shutdown stops accepting new tasks and blocks until every previously
// active Future is terminal. Queued and running work is first given timeout
// to drain on its own (timeout <= 0 waits forever); past that, cancellation
// is requested on everything still active, the grace period is waited, and
// leftovers are forcibly resolved Cancelled.
//
// Returns nil on a clean drain and ErrShutdownTimeout when escalation was
// needed, or ErrExecutorClosed if already shut down. Callers must not hold
// locks that running operations might need.
func (ex *Executor[R]) Shutdown(timeout time.Duration) error {
	if !ex.closed.CompareAndSwap(false, true) {
		return ErrExecutorClosed
	}

	ex.logger.Debug("executor shutting down", "timeout", timeout)
	ex.queue.Close()

	drainErr := waitUntil(ex.workersDone, timeout)
	if drainErr != nil {
		for _, f := range ex.snapshotActive() {
			f.Cancel()
		}
		if err := waitUntil(ex.workersDone, ex.grace); err != nil {
			// Forced tier: abandoned operations keep their goroutines, but
			// every observer sees a terminal Future.
			leftover := ex.snapshotActive()
			ex.logger.Warn("forcing cancellation of unresponsive tasks", "count", len(leftover))
			for _, f := range leftover {
				f.cancelNow()
			}
		}
	}

	ex.cancel()
	ex.loop.stop()
	ex.logger.Debug("executor stopped")
	return drainErr
}

func (ex *Executor[R]) snapshotActive() []*Future[R] {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	futures := make([]*Future[R], 0, len(ex.active))
	for _, f := range ex.active {
		futures = append(futures, f)
	}
	return futures
}

// worker repeatedly dequeues the next task and runs it to a terminal outcome.
func (ex *Executor[R]) worker() error {
	for {
		t, err := ex.queue.Dequeue(ex.ctx)
		if err != nil {
			if errors.Is(err, errQueueClosed) {
				return nil
			}
			return err
		}
		ex.run(t)
	}
}

func (ex *Executor[R]) run(t *task[R]) {
	f := t.future

	// Cancelled while still queued: the operation never runs.
	if f.CancelRequested() {
		f.cancelNow()
		ex.logger.Debug("task cancelled before start", "task_id", t.id)
		return
	}
	if !f.markRunning() {
		return
	}

	if ex.rateLimiter != nil {
		if err := ex.rateLimiter.Wait(t.ctx); err != nil {
			ex.finish(t, *new(R), err)
			return
		}
	}

	value, err := runOperation(t.ctx, t.op)
	ex.finish(t, value, err)
}

// finish records the terminal outcome. A requested cancellation wins over
// whatever the operation returned: its result is dropped, never delivered as
// success or failure.
func (ex *Executor[R]) finish(t *task[R], value R, err error) {
	f := t.future
	switch {
	case f.CancelRequested():
		f.cancelNow()
		ex.logger.Debug("task cancelled", "task_id", t.id)
	case err != nil:
		if f.fail(err) {
			ex.logger.Debug("task failed", "task_id", t.id, "error", err)
		}
	default:
		if f.succeed(value) {
			ex.logger.Debug("task succeeded", "task_id", t.id)
		}
	}
}
