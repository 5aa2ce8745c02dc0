package taskexec

import "sync"

// deliveryLoop is the coordinating goroutine of an executor. All Future
// callbacks are posted here and drained by exactly one goroutine, so callers
// may touch non-thread-safe state from callbacks without further locking.
//
// The queue is unbounded and post never blocks. That property matters:
// callbacks frequently register further callbacks (gather does this), and a
// bounded queue could deadlock the loop against itself.
type deliveryLoop struct {
	mu    sync.Mutex
	queue []func()

	notify chan struct{}
	quit   chan struct{}
	done   chan struct{}
}

func newDeliveryLoop() *deliveryLoop {
	l := &deliveryLoop{
		notify: make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// post schedules fn to run on the coordinating goroutine. Safe to call from
// any goroutine, including from within a callback already running on the loop.
func (l *deliveryLoop) post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

func (l *deliveryLoop) run() {
	defer close(l.done)
	for {
		if batch := l.take(); batch != nil {
			for _, fn := range batch {
				fn()
			}
			continue
		}

		select {
		case <-l.notify:
		case <-l.quit:
			// Deliver everything already posted before exiting, including
			// work posted by the callbacks themselves.
			for batch := l.take(); batch != nil; batch = l.take() {
				for _, fn := range batch {
					fn()
				}
			}
			return
		}
	}
}

func (l *deliveryLoop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	batch := l.queue
	l.queue = nil
	return batch
}

// stop drains pending deliveries and waits for the loop goroutine to exit.
// The executor only calls this once every future has reached a terminal state.
func (l *deliveryLoop) stop() {
	close(l.quit)
	<-l.done
}
