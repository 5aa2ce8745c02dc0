package taskexec

import (
	"context"
	"sync"
)

// taskQueue is the executor's FIFO submission queue. It is unbounded so that
// Submit never blocks the caller; backpressure is not this layer's concern.
type taskQueue[R any] struct {
	mu     sync.Mutex
	items  []*task[R]
	closed bool

	notify chan struct{}
	closeC chan struct{}
}

func newTaskQueue[R any]() *taskQueue[R] {
	return &taskQueue[R]{
		notify: make(chan struct{}, 1),
		closeC: make(chan struct{}),
	}
}

// Enqueue appends a task. Returns errQueueClosed after Close.
func (q *taskQueue[R]) Enqueue(t *task[R]) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errQueueClosed
	}
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue blocks until a task is available, the queue is closed and empty, or
// ctx is done. Tasks come out in submission order.
func (q *taskQueue[R]) Dequeue(ctx context.Context) (*task[R], error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			t := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()

			// The notify channel holds a single token; re-signal so a
			// sibling worker is not left sleeping on remaining items.
			if more {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return t, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, errQueueClosed
		}

		select {
		case <-q.notify:
		case <-q.closeC:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops intake and wakes every blocked Dequeue. Tasks already queued
// remain dequeueable until the queue is empty.
func (q *taskQueue[R]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.closeC)
}

// Len returns the number of queued tasks not yet picked up by a worker.
func (q *taskQueue[R]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
