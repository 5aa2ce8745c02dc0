package model

// TaskStatus is the application-level status of a media task. It mirrors the
// terminal states of the executor's futures, with Pending/Running for work
// that has not finished.
type TaskStatus string

const (
	// StatusPending means the task is created or queued but not started.
	StatusPending TaskStatus = "pending"

	// StatusRunning means the task's operation is executing.
	StatusRunning TaskStatus = "running"

	// StatusSuccess means the task finished and produced its output.
	StatusSuccess TaskStatus = "success"

	// StatusFailed means the task finished with an error.
	StatusFailed TaskStatus = "failed"

	// StatusCancelled means the task was cancelled before producing output.
	StatusCancelled TaskStatus = "cancelled"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsActive reports whether the task is still in flight.
func (s TaskStatus) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// IsFinished reports whether the task reached a terminal status.
func (s TaskStatus) IsFinished() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}
