package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/store"
)

// NewTestSQLiteStore creates a SQLiteStore in a temporary directory with
// all migrations applied. It automatically closes the store when the test
// completes.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, data string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// SampleProjects returns two projects exercising every field: completed
// and active todos, subtasks, and a description.
func SampleProjects() []model.Project {
	return []model.Project{
		{
			ID:   1,
			Name: "Home",
			Todos: []model.Todo{
				{
					ID:    1,
					Title: "buy milk",
					Subtasks: []model.Subtask{
						{ID: 1, Title: "whole", Completed: true},
						{ID: 2, Title: "oat"},
					},
					Description: "from the corner shop",
				},
				{ID: 2, Title: "fix sink", Completed: true, Subtasks: []model.Subtask{}},
			},
		},
		{
			ID:    2,
			Name:  "Work",
			Todos: []model.Todo{{ID: 3, Title: "write report", Subtasks: []model.Subtask{}}},
		},
	}
}
