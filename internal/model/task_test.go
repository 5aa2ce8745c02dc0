package model

import (
	"errors"
	"testing"
)

func TestTaskStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{StatusPending, true},
		{StatusRunning, true},
		{StatusSuccess, false},
		{StatusFailed, false},
		{StatusCancelled, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusSuccess, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TypeDownload, "some video", "https://example.com/watch?v=abc")

	if task.ID == "" {
		t.Error("expected a non-empty id")
	}
	if task.Status != StatusPending {
		t.Errorf("expected pending status, got %s", task.Status)
	}
	if task.ETASec != -1 {
		t.Errorf("expected unknown ETA, got %d", task.ETASec)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	other := NewTask(TypeDownload, "another", "https://example.com/watch?v=def")
	if other.ID == task.ID {
		t.Error("expected distinct ids")
	}
}

func TestTask_Transitions(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		task := NewTask(TypeDownload, "video", "https://example.com/v")
		task.MarkRunning()
		if task.Status != StatusRunning || task.StartedAt.IsZero() {
			t.Errorf("expected running with StartedAt set, got %s", task.Status)
		}

		task.MarkSuccess("/downloads/video.mp4")
		if task.Status != StatusSuccess {
			t.Errorf("expected success, got %s", task.Status)
		}
		if task.OutputPath != "/downloads/video.mp4" {
			t.Errorf("unexpected output path %s", task.OutputPath)
		}
		if task.Progress != 1.0 {
			t.Errorf("expected progress 1.0, got %f", task.Progress)
		}
		if task.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("failure keeps the error message", func(t *testing.T) {
		task := NewTask(TypeTranscribe, "audio", "/tmp/audio.wav")
		task.MarkRunning()
		task.MarkFailed(errors.New("whisper: exit status 1"))

		if task.Status != StatusFailed {
			t.Errorf("expected failed, got %s", task.Status)
		}
		if task.LastError != "whisper: exit status 1" {
			t.Errorf("unexpected error message %q", task.LastError)
		}
	})

	t.Run("cancellation", func(t *testing.T) {
		task := NewTask(TypeDownload, "video", "https://example.com/v")
		task.MarkRunning()
		task.Speed = "1.2MiB/s"
		task.MarkCancelled()

		if task.Status != StatusCancelled {
			t.Errorf("expected cancelled, got %s", task.Status)
		}
		if task.Speed != "" {
			t.Errorf("expected speed cleared, got %q", task.Speed)
		}
	})
}

func TestTask_ETAString(t *testing.T) {
	tests := []struct {
		etaSec   int
		expected string
	}{
		{-1, "—"},
		{0, "—"},
		{42, "00:42"},
		{90, "01:30"},
		{3725, "01:02:05"},
	}

	for _, test := range tests {
		task := &Task{ETASec: test.etaSec}
		if result := task.ETAString(); result != test.expected {
			t.Errorf("ETAString() with %d = %s, expected %s", test.etaSec, result, test.expected)
		}
	}
}
