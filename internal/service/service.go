// Package service runs media tasks on top of the taskexec core. Each service
// owns one executor and one registry, persists task records on every status
// transition, and pushes live updates through an optional callback.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/store"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/taskexec"
)

// UpdateFunc receives a snapshot of a task after every change. Snapshots are
// copies; the callback may keep or mutate them freely. Called from executor
// goroutines, so implementations must be safe for that.
type UpdateFunc func(model.Task)

// pipeline is the concrete service's work: run the task's source to an output
// path, reporting progress along the way.
type pipeline func(ctx context.Context, task model.Task, progress func(frac float64, speed string, etaSec int)) (string, error)

// base carries the machinery shared by both services: the executor, the
// registry, the live task table and the persistence hooks.
type base struct {
	name     string
	taskType model.TaskType
	run      pipeline

	exec     *taskexec.Executor[string]
	registry *taskexec.Registry[string]
	store    *store.Store
	log      *slog.Logger
	onUpdate UpdateFunc

	mu      sync.Mutex
	tasks   map[string]*model.Task
	futures map[string]*taskexec.Future[string]
}

func newBase(name string, taskType model.TaskType, st *store.Store, log *slog.Logger, opts ...taskexec.Option) *base {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &base{
		name:     name,
		taskType: taskType,
		exec:     taskexec.New[string](opts...),
		registry: taskexec.NewRegistry[string](),
		store:    st,
		log:      log.With("service", name),
		tasks:    make(map[string]*model.Task),
		futures:  make(map[string]*taskexec.Future[string]),
	}
}

// SetUpdateCallback registers the live-update callback. Must be called before
// the first Start.
func (b *base) SetUpdateCallback(fn UpdateFunc) {
	b.onUpdate = fn
}

// CreateTask records a new pending task and persists it.
func (b *base) CreateTask(name, source string) (model.Task, error) {
	task := model.NewTask(b.taskType, name, source)

	b.mu.Lock()
	b.tasks[task.ID] = task
	snapshot := *task
	b.mu.Unlock()

	if err := b.persist(snapshot); err != nil {
		return model.Task{}, err
	}
	b.log.Info("task created", "task_id", task.ID, "source", source)
	return snapshot, nil
}

// Get returns a snapshot of a task known to this service.
func (b *base) Get(id string) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *task, true
}

// Start submits the task's pipeline to the executor. The returned future
// yields the output path.
func (b *base) Start(id string) (*taskexec.Future[string], error) {
	b.mu.Lock()
	task, ok := b.tasks[id]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: unknown task %s", b.name, id)
	}
	if _, inFlight := b.futures[id]; inFlight {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: task %s already started", b.name, id)
	}
	if task.Status != model.StatusPending {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: task %s is %s, not pending", b.name, id, task.Status)
	}
	snapshot := *task
	b.mu.Unlock()

	future, err := b.exec.Submit(func(ctx context.Context) (string, error) {
		b.apply(id, true, func(t *model.Task) { t.MarkRunning() })
		return b.run(ctx, snapshot, func(frac float64, speed string, etaSec int) {
			b.apply(id, false, func(t *model.Task) {
				t.Progress = frac
				t.Speed = speed
				t.ETASec = etaSec
			})
		})
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.futures[id] = future
	b.mu.Unlock()
	b.registry.Track(future)

	future.OnSuccess(func(output string) {
		b.apply(id, true, func(t *model.Task) { t.MarkSuccess(output) })
		b.log.Info("task succeeded", "task_id", id, "output", output)
	})
	future.OnFailure(func(err error) {
		b.apply(id, true, func(t *model.Task) { t.MarkFailed(err) })
		b.log.Warn("task failed", "task_id", id, "error", err)
	})
	future.OnCompletion(func() {
		if future.State() == taskexec.StateCancelled {
			b.apply(id, true, func(t *model.Task) { t.MarkCancelled() })
			b.log.Info("task cancelled", "task_id", id)
		}
		b.mu.Lock()
		delete(b.futures, id)
		b.mu.Unlock()
	})

	b.log.Info("task started", "task_id", id, "future_id", future.ID())
	return future, nil
}

// StartBatch creates and starts a task per source and combines the futures.
// The combined future yields the output paths in input order.
func (b *base) StartBatch(sources []string) ([]model.Task, *taskexec.Future[[]string], error) {
	tasks := make([]model.Task, 0, len(sources))
	futures := make([]*taskexec.Future[string], 0, len(sources))

	for _, source := range sources {
		task, err := b.CreateTask(source, source)
		if err != nil {
			return nil, nil, err
		}
		future, err := b.Start(task.ID)
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, task)
		futures = append(futures, future)
	}

	combined, err := taskexec.Gather(futures...)
	if err != nil {
		return nil, nil, err
	}
	return tasks, combined, nil
}

// Cancel requests cancellation of an in-flight task.
func (b *base) Cancel(id string) bool {
	b.mu.Lock()
	future, ok := b.futures[id]
	b.mu.Unlock()
	if !ok {
		return false
	}
	return future.Cancel()
}

// Restart resets a finished task to pending and starts it again.
func (b *base) Restart(id string) (*taskexec.Future[string], error) {
	b.mu.Lock()
	task, ok := b.tasks[id]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: unknown task %s", b.name, id)
	}
	if !task.Status.IsFinished() {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: task %s is still %s", b.name, id, task.Status)
	}
	task.Status = model.StatusPending
	task.Progress = 0
	task.Speed = ""
	task.ETASec = -1
	task.LastError = ""
	task.OutputPath = ""
	snapshot := *task
	b.mu.Unlock()

	if err := b.persist(snapshot); err != nil {
		return nil, err
	}
	return b.Start(id)
}

// Shutdown cancels everything in flight, waits for the registry to drain, and
// stops the executor. The timeout applies to each phase.
func (b *base) Shutdown(timeout time.Duration) error {
	b.log.Info("shutting down", "timeout", timeout)
	regErr := b.registry.Shutdown(timeout)
	execErr := b.exec.Shutdown(timeout)
	if regErr != nil {
		return regErr
	}
	return execErr
}

// apply mutates a task under the lock, optionally persists it, and notifies
// the update callback with a snapshot. Progress ticks skip persistence; only
// status transitions touch the store.
func (b *base) apply(id string, persist bool, mutate func(*model.Task)) {
	b.mu.Lock()
	task, ok := b.tasks[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	mutate(task)
	snapshot := *task
	b.mu.Unlock()

	if persist {
		if err := b.persist(snapshot); err != nil {
			b.log.Error("persisting task failed", "task_id", id, "error", err)
		}
	}
	if b.onUpdate != nil {
		b.onUpdate(snapshot)
	}
}

func (b *base) persist(task model.Task) error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Save(&task); err != nil {
		return fmt.Errorf("%s: saving task %s: %w", b.name, task.ID, err)
	}
	return nil
}
