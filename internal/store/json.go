package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nhle/todo-projects/internal/model"
)

//go:embed projects.schema.json
var projectsSchemaJSON string

var projectsSchema = jsonschema.MustCompileString("projects.schema.json", projectsSchemaJSON)

// lockRetryDelay is how often Save retries a held lock until ctx is done.
const lockRetryDelay = 50 * time.Millisecond

// JSONStore persists the collection as a pretty-printed JSON array in
// projects.json, migrating a legacy todos.json on first load.
type JSONStore struct {
	path       string
	legacyPath string
	lock       *flock.Flock
}

// NewJSONStore returns a store rooted at dir. Nothing is read until Load.
func NewJSONStore(dir string) *JSONStore {
	path := filepath.Join(dir, ProjectsFile)
	return &JSONStore{
		path:       path,
		legacyPath: filepath.Join(dir, LegacyFile),
		lock:       flock.New(path + ".lock"),
	}
}

// Path returns the location of projects.json.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads projects.json. When it does not exist but todos.json does,
// the legacy list is wrapped into a single "Default Project" and written
// to projects.json straight away. Unreadable or invalid documents are
// logged and yield an empty collection.
func (s *JSONStore) Load(ctx context.Context) ([]model.Project, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		projects, err := DecodeProjects(data)
		if err != nil {
			log.Warn("ignoring unreadable projects file", "path", s.path, "err", err)
			return []model.Project{}, nil
		}
		log.Debug("loaded projects", "path", s.path, "count", len(projects))
		return projects, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Warn("reading projects file", "path", s.path, "err", err)
		return []model.Project{}, nil
	}

	projects, ok := readLegacy(s.legacyPath)
	if !ok {
		return []model.Project{}, nil
	}
	if err := s.Save(ctx, projects); err != nil {
		log.Error("saving migrated projects", "path", s.path, "err", err)
	}
	return projects, nil
}

// readLegacy wraps the todos of a legacy todos.json into one project.
// It reports false when the file is missing or unreadable.
func readLegacy(path string) ([]model.Project, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("reading legacy todos file", "path", path, "err", err)
		}
		return nil, false
	}

	todos, err := DecodeLegacyTodos(data)
	if err != nil {
		log.Warn("ignoring unreadable legacy todos file", "path", path, "err", err)
		return nil, false
	}

	log.Info("migrating legacy todos", "from", path, "count", len(todos))
	return LegacyProjects(todos), true
}

// Save overwrites projects.json with the full collection. The file is
// truncated on create, so a failed write can leave it partially written.
// Concurrent writers in other processes are serialized through a lock
// file next to it.
func (s *JSONStore) Save(ctx context.Context, projects []model.Project) error {
	data, err := EncodeProjects(projects)
	if err != nil {
		return err
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking %s: %w", s.path, err)
	}
	if !locked {
		return fmt.Errorf("locking %s: lock is held", s.path)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Warn("releasing projects lock", "path", s.path, "err", err)
		}
	}()

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.path, err)
	}

	log.Debug("saved projects", "path", s.path, "count", len(projects))
	return nil
}

// Close is a no-op; the lock is only held for the duration of Save.
func (s *JSONStore) Close() error {
	return nil
}

// EncodeProjects renders the collection in its persisted form: a
// 2-space indented array with empty todos and subtasks written as [].
func EncodeProjects(projects []model.Project) ([]byte, error) {
	out := model.Normalize(model.CloneProjects(projects))
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding projects: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeProjects parses and validates a projects.json document.
func DecodeProjects(data []byte) ([]model.Project, error) {
	// Numbers stay exact so the id bounds are checked without float rounding.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing projects: %w", err)
	}
	if err := projectsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating projects: %w", err)
	}

	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	return model.Normalize(projects), nil
}

// DecodeLegacyTodos parses a legacy todos.json: a bare array of todos.
func DecodeLegacyTodos(data []byte) ([]model.Todo, error) {
	var todos []model.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("parsing legacy todos: %w", err)
	}
	return todos, nil
}

// LegacyProjects wraps legacy todos into the single synthetic project
// used by the migration.
func LegacyProjects(todos []model.Todo) []model.Project {
	return model.Normalize([]model.Project{{
		ID:    1,
		Name:  model.DefaultProjectName,
		Todos: todos,
	}})
}
