package store

import (
	"context"
	"fmt"
	"os"

	"github.com/nhle/todo-projects/internal/model"
)

// File names inside the data directory.
const (
	ProjectsFile = "projects.json"
	LegacyFile   = "todos.json"
	DatabaseFile = "projects.db"
)

// Store defines the persistence interface for the project collection.
// Save always replaces the whole collection; there are no incremental
// writes.
type Store interface {
	// Load returns the last saved collection. A missing or unreadable
	// collection yields an empty one; only environment failures (for
	// example an unopenable database) are returned as errors.
	Load(ctx context.Context) ([]model.Project, error)

	// Save overwrites the persisted collection with projects.
	Save(ctx context.Context, projects []model.Project) error

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the data directory and returns the backend selected by
// cfg.Storage.Backend.
func Open(cfg *model.AppConfig) (Store, error) {
	dir := cfg.DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	switch cfg.Storage.Backend {
	case model.BackendSQLite:
		return NewSQLiteStore(dir)
	default:
		return NewJSONStore(dir), nil
	}
}
