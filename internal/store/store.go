// Package store persists task records to a JSON file. The file is the whole
// database: small, human-readable, rewritten atomically on every save.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
)

// Store is a JSON-file backed task store. Safe for concurrent use; every
// mutating call rewrites the file.
type Store struct {
	path string

	mu    sync.Mutex
	tasks map[string]*model.Task
}

// Open loads the store at path, creating an empty one if the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		tasks: make(map[string]*model.Task),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}

	var tasks []*model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", path, err)
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s, nil
}

// Save upserts the task record and rewrites the file.
func (s *Store) Save(t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *t
	s.tasks[t.ID] = &clone
	return s.flush()
}

// Get returns a copy of the stored task, if present.
func (s *Store) Get(id string) (*model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	clone := *t
	return &clone, true
}

// List returns copies of all stored tasks in creation order.
func (s *Store) List() []*model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

// Delete removes a task record and rewrites the file. Unknown ids are a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return nil
	}
	delete(s.tasks, id)
	return s.flush()
}

func (s *Store) sorted() []*model.Task {
	tasks := make([]*model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		clone := *t
		tasks = append(tasks, &clone)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// flush writes the full task list to a sibling temp file and renames it over
// the store path, so a crash mid-write never truncates the database.
// Callers hold s.mu.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("store: encoding tasks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replacing %s: %w", s.path, err)
	}
	return nil
}
