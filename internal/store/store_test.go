package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
)

func TestStore_OpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("expected an empty store, got %d tasks", len(got))
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	task := model.NewTask(model.TypeDownload, "video", "https://example.com/v")
	task.MarkRunning()
	task.MarkSuccess("/downloads/video.mp4")
	if err := s.Save(task); err != nil {
		t.Fatalf("failed to save task: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	got, ok := reopened.Get(task.ID)
	if !ok {
		t.Fatal("expected the saved task after reload")
	}
	if got.Status != model.StatusSuccess {
		t.Errorf("expected success status, got %s", got.Status)
	}
	if got.OutputPath != "/downloads/video.mp4" {
		t.Errorf("unexpected output path %q", got.OutputPath)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("CreatedAt changed across reload: %v vs %v", got.CreatedAt, task.CreatedAt)
	}
}

func TestStore_ListOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	for i, name := range []string{"first", "second", "third"} {
		task := model.NewTask(model.TypeDownload, name, "https://example.com/v")
		// Force distinct timestamps so ordering is deterministic.
		task.CreatedAt = time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)
		if err := s.Save(task); err != nil {
			t.Fatalf("failed to save task %q: %v", name, err)
		}
	}

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(got))
	}
	if got[0].Name != "first" || got[1].Name != "second" || got[2].Name != "third" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	task := model.NewTask(model.TypeTranscribe, "audio", "/tmp/audio.mp4")
	if err := s.Save(task); err != nil {
		t.Fatalf("failed to save task: %v", err)
	}

	got, _ := s.Get(task.ID)
	got.Name = "mutated"

	again, _ := s.Get(task.ID)
	if again.Name != "audio" {
		t.Error("mutating a returned task leaked into the store")
	}
}

func TestStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	task := model.NewTask(model.TypeDownload, "video", "https://example.com/v")
	if err := s.Save(task); err != nil {
		t.Fatalf("failed to save task: %v", err)
	}
	if err := s.Delete(task.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}
	if _, ok := s.Get(task.ID); ok {
		t.Error("expected the task to be gone")
	}

	if err := s.Delete("no-such-task"); err != nil {
		t.Errorf("deleting an unknown id should be a no-op, got %v", err)
	}
}

func TestStore_OpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected an error for a corrupt state file")
	}
}
