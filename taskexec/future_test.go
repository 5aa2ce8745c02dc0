package taskexec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/taskexec"
)

func TestFuture_Await(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		ex := taskexec.New[string](taskexec.WithWorkerCount(2))
		defer ex.Shutdown(time.Second)

		future, err := ex.Submit(func(ctx context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "success", nil
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}

		value, err := future.Await()
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
		if future.State() != taskexec.StateSucceeded {
			t.Errorf("expected state succeeded, got %v", future.State())
		}
	})

	t.Run("error result", func(t *testing.T) {
		ex := taskexec.New[string](taskexec.WithWorkerCount(2))
		defer ex.Shutdown(time.Second)

		expectedErr := errors.New("task failed")
		future, err := ex.Submit(func(ctx context.Context) (string, error) {
			return "", expectedErr
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}

		value, err := future.Await()
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
		if future.State() != taskexec.StateFailed {
			t.Errorf("expected state failed, got %v", future.State())
		}
	})

	t.Run("multiple Await calls return same result", func(t *testing.T) {
		ex := taskexec.New[int](taskexec.WithWorkerCount(2))
		defer ex.Shutdown(time.Second)

		future, err := ex.Submit(func(ctx context.Context) (int, error) {
			return 123, nil
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}

		value1, err1 := future.Await()
		value2, err2 := future.Await()

		if value1 != value2 || err1 != err2 {
			t.Errorf("Await calls returned different results")
		}
		if value1 != 123 {
			t.Errorf("expected value 123, got %v", value1)
		}
	})
}

func TestFuture_AwaitContext(t *testing.T) {
	t.Run("context timeout before result", func(t *testing.T) {
		ex := taskexec.New[string](taskexec.WithWorkerCount(1))
		defer ex.Shutdown(time.Second)

		release := make(chan struct{})
		future, err := ex.Submit(func(ctx context.Context) (string, error) {
			<-release
			return "too late", nil
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		value, err := future.AwaitContext(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}

		// The wait was abandoned, not the work.
		if future.State().Terminal() {
			t.Errorf("future should not be terminal yet, got %v", future.State())
		}
	})
}

func TestFuture_CallbackOrdering(t *testing.T) {
	t.Run("success before completion", func(t *testing.T) {
		ex := taskexec.New[int](taskexec.WithWorkerCount(2))
		defer ex.Shutdown(time.Second)

		var order []string
		delivered := make(chan struct{})

		future, err := ex.Submit(func(ctx context.Context) (int, error) {
			return 7, nil
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}

		future.OnSuccess(func(v int) {
			order = append(order, "success")
		})
		future.OnFailure(func(err error) {
			order = append(order, "failure")
		})
		future.OnCompletion(func() {
			order = append(order, "completion")
			close(delivered)
		})

		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for callback delivery")
		}

		if len(order) != 2 || order[0] != "success" || order[1] != "completion" {
			t.Errorf("expected [success completion], got %v", order)
		}
	})

	t.Run("failure callback fires instead of success", func(t *testing.T) {
		ex := taskexec.New[int](taskexec.WithWorkerCount(2))
		defer ex.Shutdown(time.Second)

		expectedErr := errors.New("boom")
		var gotErr error
		successFired := false
		delivered := make(chan struct{})

		future, err := ex.Submit(func(ctx context.Context) (int, error) {
			return 0, expectedErr
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}

		future.OnSuccess(func(v int) { successFired = true })
		future.OnFailure(func(err error) { gotErr = err })
		future.OnCompletion(func() { close(delivered) })

		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for callback delivery")
		}

		if successFired {
			t.Error("onSuccess fired for a failed future")
		}
		if !errors.Is(gotErr, expectedErr) {
			t.Errorf("expected onFailure with %v, got %v", expectedErr, gotErr)
		}
	})
}

func TestFuture_LateRegistration(t *testing.T) {
	ex := taskexec.New[string](taskexec.WithWorkerCount(2))
	defer ex.Shutdown(time.Second)

	future, err := ex.Submit(func(ctx context.Context) (string, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("failed to submit task: %v", err)
	}

	if _, err := future.Await(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Registration after the terminal transition still fires, via the
	// coordinating goroutine rather than inline.
	got := make(chan string, 1)
	future.OnSuccess(func(v string) { got <- v })

	select {
	case v := <-got:
		if v != "done" {
			t.Errorf("expected 'done', got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Error("late-registered onSuccess never fired")
	}
}

func TestFuture_CancelOnTerminal(t *testing.T) {
	ex := taskexec.New[int](taskexec.WithWorkerCount(2))
	defer ex.Shutdown(time.Second)

	future, err := ex.Submit(func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatalf("failed to submit task: %v", err)
	}

	if _, err := future.Await(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if future.Cancel() {
		t.Error("cancel on a terminal future should not be accepted")
	}
	if future.State() != taskexec.StateSucceeded {
		t.Errorf("state changed after rejected cancel: %v", future.State())
	}
}

func TestFuture_SingleThreadedDelivery(t *testing.T) {
	// Callbacks run on one coordinating goroutine, so unsynchronized caller
	// state is safe to mutate from them.
	ex := taskexec.New[int](taskexec.WithWorkerCount(8))
	defer ex.Shutdown(5 * time.Second)

	const numTasks = 200
	counter := 0
	done := make(chan struct{}, numTasks)

	for i := range numTasks {
		future, err := ex.Submit(func(ctx context.Context) (int, error) {
			return i, nil
		})
		if err != nil {
			t.Fatalf("failed to submit task %d: %v", i, err)
		}
		future.OnCompletion(func() {
			counter++
			done <- struct{}{}
		})
	}

	for range numTasks {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for completions")
		}
	}

	if counter != numTasks {
		t.Errorf("expected %d completions, got %d", numTasks, counter)
	}
}
