package model_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-projects/internal/model"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(model.BackendJSON, cfg.Storage.Backend)
	assert.Equal("info", cfg.Log.Level)
	assert.Equal(2, cfg.UI.FlashSeconds)
	assert.Equal("list", cfg.UI.StartView)
	assert.False(cfg.Export.Prompt)
}

func TestSaveThenLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &model.AppConfig{
		Storage: model.StorageConfig{Backend: model.BackendSQLite, DataDir: "/tmp/todo-data"},
		Export:  model.ExportConfig{Dir: "/tmp/reports", Prompt: true},
		Log:     model.LogConfig{Level: "debug", Format: "json", File: "/tmp/todo.log"},
		UI:      model.UIConfig{FlashSeconds: 5, StartView: "projects"},
	}
	require.NoError(t, model.SaveConfig(path, want))

	got, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(want, got)
	assert.Equal("/tmp/todo-data", got.DataDir())
	assert.Equal("/tmp/todo.log", got.LogFile())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TODO_STORAGE_BACKEND", "sqlite")
	t.Setenv("TODO_UI_FLASH_SECONDS", "7")

	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 7, cfg.UI.FlashSeconds)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: mongo\n"), 0o644))

	_, err := model.LoadConfig(path)
	assert.ErrorContains(t, err, "storage.backend")
}

func TestValidateFillsFallbacks(t *testing.T) {
	assert := assert.New(t)

	cfg := &model.AppConfig{UI: model.UIConfig{FlashSeconds: 3}}
	require.NoError(t, cfg.Validate())
	assert.Equal(model.BackendJSON, cfg.Storage.Backend)
	assert.Equal(3, cfg.UI.FlashSeconds)
	assert.Equal("list", cfg.UI.StartView)

	cfg.Storage.DataDir = ""
	assert.Equal(model.DefaultDataDir(), cfg.DataDir())
	assert.Equal(filepath.Join(model.DefaultDataDir(), "todo.log"), cfg.LogFile())

	cfg.UI.StartView = "calendar"
	assert.Error(cfg.Validate())
}

func TestLoadConfigRejectsNonPositiveFlashSeconds(t *testing.T) {
	for _, v := range []string{"0", "-1"} {
		t.Run(v, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("ui:\n  flash_seconds: "+v+"\n"), 0o644))

			_, err := model.LoadConfig(path)
			assert.ErrorContains(t, err, "ui.flash_seconds")
		})
	}
}

func TestDefaultDataDirFollowsXDGDataHome(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG data home applies to Unix-like systems")
	}

	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	assert.Equal(t, filepath.Join(dir, model.AppName), model.DefaultDataDir())

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "relative/path")
	assert.Equal(t, filepath.Join(home, ".local", "share", model.AppName), model.DefaultDataDir())
}
