// Package taskexec provides the asynchronous task execution core of the
// application: a worker-pool-backed executor, futures with callback
// registration, future combination, and the per-service task registry.
//
// The primary types are Executor[R], which runs blocking operations
// (subprocess invocation, file I/O, network calls) on a bounded pool of
// worker goroutines, and Future[R], the handle to one operation's eventual
// outcome. Every Future callback is delivered on the executor's single
// coordinating goroutine, so callers may mutate non-thread-safe state from
// callbacks without locking.
//
// # Basic Usage
//
//	ex := taskexec.New[string](taskexec.WithWorkerCount(4))
//	defer ex.Shutdown(5 * time.Second)
//
//	future, err := ex.Submit(func(ctx context.Context) (string, error) {
//	    return fetch(ctx, url)
//	})
//	if err != nil {
//	    return err
//	}
//	future.OnSuccess(func(path string) { markDone(path) })
//	future.OnFailure(func(err error) { markFailed(err) })
//	future.OnCompletion(func() { refresh() })
//
// # Cancellation
//
// Cancellation is cooperative first: Cancel sets a flag and aborts the
// operation's context, and well-behaved operations return promptly. Only
// after the configured grace period does the executor force the Future into
// the Cancelled state and abandon the operation. The forced tier can leave
// external resources (temp files, child processes) orphaned and is a
// documented last resort, not a reliable mechanism.
//
// # Combining Futures
//
// Gather aggregates several futures into one:
//
//	batch, err := taskexec.Gather(f1, f2, f3)
//	if err != nil {
//	    return err
//	}
//	results, err := batch.Await() // values in input order
//
// The combined future succeeds only if every child succeeds, fails with the
// first reported child failure, and propagates parent cancellation to all
// children.
//
// # Registries
//
// Services that submit tasks keep a Registry mapping task ids to futures for
// cancellation and teardown. Track auto-removes entries on completion, which
// keeps the mapping bounded over a long-running process's lifetime.
package taskexec
