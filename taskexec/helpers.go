package taskexec

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// waitUntil blocks until either the done channel is closed or the timeout is
// reached. A timeout <= 0 waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// runOperation executes an operation with panic recovery. A panic is
// converted to an error with a captured stack so a misbehaving task cannot
// crash its worker.
func runOperation[R any](ctx context.Context, op Operation[R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("operation panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	return op(ctx)
}
