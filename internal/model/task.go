package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskType distinguishes the two pipelines the application runs.
type TaskType string

const (
	TypeDownload   TaskType = "download"
	TypeTranscribe TaskType = "transcribe"
)

// Task is the persistent record of one unit of media work. The executor's
// Future carries the in-flight outcome; this record is what services persist
// and what the CLI renders.
type Task struct {
	ID     string     `json:"id"`
	Type   TaskType   `json:"type"`
	Name   string     `json:"name"`
	Status TaskStatus `json:"status"`

	// Source is the input: a URL for downloads, a file path for transcriptions.
	Source string `json:"source"`
	// OutputPath is the produced file, set on success (and best-effort during
	// a download once the destination is known).
	OutputPath string `json:"output_path,omitempty"`

	Progress float64 `json:"progress"` // 0.0 to 1.0
	Speed    string  `json:"speed,omitempty"`
	ETASec   int     `json:"eta_sec,omitempty"` // -1 when unknown

	LastError string `json:"last_error,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewTask creates a pending task with a fresh id. Ids are time-ordered UUIDs
// so persisted records list in creation order.
func NewTask(taskType TaskType, name, source string) *Task {
	return &Task{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      taskType,
		Name:      name,
		Source:    source,
		Status:    StatusPending,
		ETASec:    -1,
		CreatedAt: time.Now(),
	}
}

// MarkRunning records the start of execution.
func (t *Task) MarkRunning() {
	t.Status = StatusRunning
	t.StartedAt = time.Now()
}

// MarkSuccess records successful completion and the produced output.
func (t *Task) MarkSuccess(outputPath string) {
	t.Status = StatusSuccess
	t.OutputPath = outputPath
	t.Progress = 1.0
	t.Speed = ""
	t.ETASec = -1
	t.FinishedAt = time.Now()
}

// MarkFailed records a failure. The error message is kept for display and
// persistence; the error value itself travels on the Future.
func (t *Task) MarkFailed(err error) {
	t.Status = StatusFailed
	if err != nil {
		t.LastError = err.Error()
	}
	t.Speed = ""
	t.ETASec = -1
	t.FinishedAt = time.Now()
}

// MarkCancelled records cancellation.
func (t *Task) MarkCancelled() {
	t.Status = StatusCancelled
	t.Speed = ""
	t.ETASec = -1
	t.FinishedAt = time.Now()
}

// ETAString formats the ETA as mm:ss or hh:mm:ss, or "—" when unknown.
func (t *Task) ETAString() string {
	if t.ETASec <= 0 {
		return "—"
	}
	hours := t.ETASec / 3600
	minutes := (t.ETASec % 3600) / 60
	seconds := t.ETASec % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
