package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-projects/internal/report"
	"github.com/nhle/todo-projects/internal/store"
	"github.com/nhle/todo-projects/internal/testutil"
)

// execute runs the CLI against an isolated config and data directory.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath, "--data-dir", dataDir}, args...))

	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	data, err := store.EncodeProjects(testutil.SampleProjects())
	require.NoError(t, err)
	testutil.WriteFile(t, dir, store.ProjectsFile, string(data))
	return dir
}

func TestProjectsCommand(t *testing.T) {
	out, err := execute(t, seed(t), "projects")
	require.NoError(t, err)

	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "50.0%")
}

func TestProjectsCommandEmpty(t *testing.T) {
	out, err := execute(t, t.TempDir(), "projects")
	require.NoError(t, err)
	assert.Equal(t, "No projects.\n", out)
}

func TestExportCommand(t *testing.T) {
	dir := seed(t)
	dest := filepath.Join(t.TempDir(), "work.pdf")

	out, err := execute(t, dir, "export", "--project", "work", "--out", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, strings.TrimSpace(out))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportCommandUnknownProject(t *testing.T) {
	_, err := execute(t, seed(t), "export", "--project", "nope", "--out", filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, report.ErrProjectNotFound)
}

func TestExportCommandNoProjects(t *testing.T) {
	_, err := execute(t, t.TempDir(), "export", "--out", filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, report.ErrNoActiveProject)
}

func TestSQLiteBackendFlag(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "--backend", "sqlite", "projects")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, store.DatabaseFile))

	_, err = execute(t, dir, "--backend", "postgres", "projects")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "config", "init"})

	require.NoError(t, root.Execute())
	assert.FileExists(t, cfgPath)

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "config", "init"})
	assert.Error(t, root.Execute())
}
