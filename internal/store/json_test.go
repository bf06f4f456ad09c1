package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/store"
	"github.com/nhle/todo-projects/internal/testutil"
)

func TestJSONStoreLoadMissingFiles(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := store.NewJSONStore(t.TempDir())
	projects, err := s.Load(context.Background())
	assert.NoError(err)
	assert.NotNil(projects)
	assert.Empty(projects)
}

func TestJSONStoreRoundTrip(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	s := store.NewJSONStore(t.TempDir())
	want := testutil.SampleProjects()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(want, got)
}

func TestJSONStoreSaveIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewJSONStore(t.TempDir())
	require.NoError(t, s.Save(ctx, testutil.SampleProjects()))
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestJSONStoreWritesEmptyCollectionsAsArrays(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := store.NewJSONStore(t.TempDir())
	projects := []model.Project{{ID: 4, Name: "Empty"}}
	require.NoError(t, s.Save(context.Background(), projects))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal("[\n  {\n    \"id\": 4,\n    \"name\": \"Empty\",\n    \"todos\": []\n  }\n]\n", string(data))
	assert.Nil(projects[0].Todos, "save must not mutate its input")
}

func TestJSONStoreMigratesLegacyTodos(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, store.LegacyFile, `[{"id":1,"title":"buy milk","completed":false}]`)

	s := store.NewJSONStore(dir)
	got, err := s.Load(ctx)
	require.NoError(t, err)

	want := []model.Project{{
		ID:   1,
		Name: "Default Project",
		Todos: []model.Todo{{
			ID:       1,
			Title:    "buy milk",
			Subtasks: []model.Subtask{},
		}},
	}}
	assert.Equal(want, got)

	data, err := os.ReadFile(filepath.Join(dir, store.ProjectsFile))
	require.NoError(t, err)
	assert.JSONEq(`[{"id":1,"name":"Default Project","todos":[
		{"id":1,"title":"buy milk","completed":false,"subtasks":[],"description":""}]}]`,
		string(data))

	// A second load reads projects.json and ignores the legacy file.
	testutil.WriteFile(t, dir, store.LegacyFile, `[]`)
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(want, again)
}

func TestJSONStorePrefersProjectsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, store.LegacyFile, `[{"id":9,"title":"old","completed":true}]`)
	testutil.WriteFile(t, dir, store.ProjectsFile, `[{"id":3,"name":"Current","todos":[]}]`)

	got, err := store.NewJSONStore(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Project{{ID: 3, Name: "Current", Todos: []model.Todo{}}}, got)
}

func TestJSONStoreDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, store.ProjectsFile,
		`[{"id":1,"name":"P","todos":[{"id":5,"title":"t","completed":true}]}]`)

	got, err := store.NewJSONStore(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Todos, 1)
	assert.Equal(t, "", got[0].Todos[0].Description)
	assert.Equal(t, []model.Subtask{}, got[0].Todos[0].Subtasks)
}

func TestJSONStoreInvalidFilesYieldEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "object root", data: `{"id":1}`},
		{name: "missing name", data: `[{"id":1,"todos":[]}]`},
		{name: "negative id", data: `[{"id":-1,"name":"x"}]`},
		{name: "string completed", data: `[{"id":1,"name":"x","todos":[{"id":1,"title":"t","completed":"yes"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			testutil.WriteFile(t, dir, store.ProjectsFile, tt.data)

			got, err := store.NewJSONStore(dir).Load(context.Background())
			assert.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestJSONStoreCorruptLegacyYieldsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, store.LegacyFile, `not json`)

	got, err := store.NewJSONStore(dir).Load(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoFileExists(t, filepath.Join(dir, store.ProjectsFile))
}

func TestJSONStoreSaveWaitsForLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.NewJSONStore(dir)

	held := flock.New(s.Path() + ".lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = s.Save(ctx, testutil.SampleProjects())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, s.Path())
}

func TestDecodeProjectsValidates(t *testing.T) {
	t.Parallel()

	_, err := store.DecodeProjects([]byte(`[{"id":1}]`))
	assert.Error(t, err)

	got, err := store.DecodeProjects([]byte(`[]`))
	assert.NoError(t, err)
	assert.Equal(t, []model.Project{}, got)
}

func TestDecodeProjectsBoundsIDs(t *testing.T) {
	t.Parallel()

	got, err := store.DecodeProjects([]byte(`[{"id":9223372036854775807,"name":"max","todos":[]}]`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63-1), got[0].ID)

	_, err = store.DecodeProjects([]byte(`[{"id":9223372036854775808,"name":"over","todos":[]}]`))
	assert.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Parallel()

	cfg := &model.AppConfig{Storage: model.StorageConfig{
		Backend: model.BackendJSON,
		DataDir: filepath.Join(t.TempDir(), "nested"),
	}}
	s, err := store.Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.JSONStore{}, s)
	assert.DirExists(t, cfg.Storage.DataDir)
	require.NoError(t, s.Close())

	cfg.Storage.Backend = model.BackendSQLite
	s, err = store.Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, s)
	require.NoError(t, s.Close())
}
