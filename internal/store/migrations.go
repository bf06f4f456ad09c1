package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id       INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	project_id  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	id          INTEGER NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	description TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL,
	PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS subtasks (
	project_id INTEGER NOT NULL,
	todo_id    INTEGER NOT NULL,
	id         INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	completed  INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	position   INTEGER NOT NULL,
	PRIMARY KEY (project_id, todo_id, id),
	FOREIGN KEY (project_id, todo_id)
		REFERENCES todos(project_id, id) ON DELETE CASCADE
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_projects_position ON projects(position);
CREATE INDEX IF NOT EXISTS idx_todos_project_position ON todos(project_id, position);
CREATE INDEX IF NOT EXISTS idx_subtasks_todo_position ON subtasks(project_id, todo_id, position);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO meta (key, value)
	SELECT 'collection_saved', '1' WHERE EXISTS (SELECT 1 FROM projects);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
