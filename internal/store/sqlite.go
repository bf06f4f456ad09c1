package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/todo-projects/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
// Row order is kept in explicit position columns.
type SQLiteStore struct {
	db         *sqlx.DB
	path       string
	legacyPath string
}

type projectRow struct {
	ID   uint64 `db:"id"`
	Name string `db:"name"`
}

type todoRow struct {
	ProjectID   uint64 `db:"project_id"`
	ID          uint64 `db:"id"`
	Title       string `db:"title"`
	Completed   bool   `db:"completed"`
	Description string `db:"description"`
}

type subtaskRow struct {
	ProjectID uint64 `db:"project_id"`
	TodoID    uint64 `db:"todo_id"`
	ID        uint64 `db:"id"`
	Title     string `db:"title"`
	Completed bool   `db:"completed"`
}

// NewSQLiteStore opens (or creates) projects.db inside dir,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, DatabaseFile)
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:         db,
		path:       dbPath,
		legacyPath: filepath.Join(dir, LegacyFile),
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		log.Debug("applied migration", "db", s.path, "version", m.version)
	}

	return nil
}

// savedKey marks a database that has held a collection at least once.
const savedKey = "collection_saved"

// Load returns every project with its todos and subtasks in stored order.
// A database that has never been saved to is seeded from a legacy
// todos.json when one exists.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Project, error) {
	var projectRows []projectRow
	if err := s.db.SelectContext(ctx, &projectRows,
		"SELECT id, name FROM projects ORDER BY position"); err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}

	if len(projectRows) == 0 {
		saved, err := s.everSaved(ctx)
		if err != nil {
			return nil, err
		}
		if saved {
			return []model.Project{}, nil
		}
		projects, ok := readLegacy(s.legacyPath)
		if !ok {
			return []model.Project{}, nil
		}
		if err := s.Save(ctx, projects); err != nil {
			log.Error("saving migrated projects", "db", s.path, "err", err)
		}
		return projects, nil
	}

	var todoRows []todoRow
	if err := s.db.SelectContext(ctx, &todoRows, `
		SELECT project_id, id, title, completed, description
		FROM todos ORDER BY project_id, position`); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	var subtaskRows []subtaskRow
	if err := s.db.SelectContext(ctx, &subtaskRows, `
		SELECT project_id, todo_id, id, title, completed
		FROM subtasks ORDER BY project_id, todo_id, position`); err != nil {
		return nil, fmt.Errorf("querying subtasks: %w", err)
	}

	type todoKey struct{ project, todo uint64 }
	subtasks := make(map[todoKey][]model.Subtask)
	for _, r := range subtaskRows {
		k := todoKey{r.ProjectID, r.TodoID}
		subtasks[k] = append(subtasks[k], model.Subtask{
			ID:        r.ID,
			Title:     r.Title,
			Completed: r.Completed,
		})
	}

	todos := make(map[uint64][]model.Todo)
	for _, r := range todoRows {
		todos[r.ProjectID] = append(todos[r.ProjectID], model.Todo{
			ID:          r.ID,
			Title:       r.Title,
			Completed:   r.Completed,
			Description: r.Description,
			Subtasks:    subtasks[todoKey{r.ProjectID, r.ID}],
		})
	}

	projects := make([]model.Project, 0, len(projectRows))
	for _, r := range projectRows {
		projects = append(projects, model.Project{
			ID:    r.ID,
			Name:  r.Name,
			Todos: todos[r.ID],
		})
	}

	log.Debug("loaded projects", "db", s.path, "count", len(projects))
	return model.Normalize(projects), nil
}

func (s *SQLiteStore) everSaved(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM meta WHERE key = ?", savedKey); err != nil {
		return false, fmt.Errorf("reading meta: %w", err)
	}
	return n > 0, nil
}

// Save replaces the whole collection inside one transaction. Ids must
// fit in a signed 64-bit integer.
func (s *SQLiteStore) Save(ctx context.Context, projects []model.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Subtasks and todos go with their project through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing projects: %w", err)
	}

	projectStmt, err := tx.PreparexContext(ctx,
		"INSERT INTO projects (id, name, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing project insert: %w", err)
	}
	defer projectStmt.Close()

	todoStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO todos (project_id, id, title, completed, description, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing todo insert: %w", err)
	}
	defer todoStmt.Close()

	subtaskStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO subtasks (project_id, todo_id, id, title, completed, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing subtask insert: %w", err)
	}
	defer subtaskStmt.Close()

	for pi, p := range projects {
		if _, err := projectStmt.ExecContext(ctx, p.ID, p.Name, pi); err != nil {
			return fmt.Errorf("inserting project %d: %w", p.ID, err)
		}
		for ti, t := range p.Todos {
			if _, err := todoStmt.ExecContext(ctx,
				p.ID, t.ID, t.Title, t.Completed, t.Description, ti,
			); err != nil {
				return fmt.Errorf("inserting todo %d of project %d: %w", t.ID, p.ID, err)
			}
			for si, st := range t.Subtasks {
				if _, err := subtaskStmt.ExecContext(ctx,
					p.ID, t.ID, st.ID, st.Title, st.Completed, si,
				); err != nil {
					return fmt.Errorf("inserting subtask %d of todo %d: %w", st.ID, t.ID, err)
				}
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, '1')", savedKey); err != nil {
		return fmt.Errorf("marking collection saved: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing projects: %w", err)
	}
	log.Debug("saved projects", "db", s.path, "count", len(projects))
	return nil
}
