package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// AppName names the per-user config and data directories.
const AppName = "todo-projects"

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// StorageConfig controls where and how projects are persisted.
type StorageConfig struct {
	// Backend is "json" (projects.json) or "sqlite" (projects.db).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// DataDir overrides the OS per-user data directory.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	// Dir is where reports are written; empty means ~/Downloads.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Prompt asks for a destination path before every export.
	Prompt bool `mapstructure:"prompt" yaml:"prompt"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// File defaults to <data dir>/todo.log.
	File string `mapstructure:"file" yaml:"file"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	FlashSeconds int    `mapstructure:"flash_seconds" yaml:"flash_seconds"`
	StartView    string `mapstructure:"start_view" yaml:"start_view"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todo-projects/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", AppName, "config.yaml")
}

// DefaultDataDir returns the OS-appropriate per-user data directory:
// $XDG_DATA_HOME (or ~/.local/share) on Unix, Application Support on
// macOS and %AppData% on Windows.
func DefaultDataDir() string {
	dir, err := userDataDir()
	if err != nil {
		return filepath.Join(".", AppName)
	}
	return filepath.Join(dir, AppName)
}

func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin", "ios", "windows", "plan9":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{Backend: BackendJSON},
		Log:     LogConfig{Level: "info", Format: "text"},
		UI:      UIConfig{FlashSeconds: 2, StartView: "list"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendJSON)
	v.SetDefault("storage.data_dir", "")
	v.SetDefault("export.dir", "")
	v.SetDefault("export.prompt", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.flash_seconds", 2)
	v.SetDefault("ui.start_view", "list")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TODO_ (TODO_STORAGE_BACKEND, ...)
// override file values. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the application cannot run with and fills in
// zero values that have a sensible fallback.
func (c *AppConfig) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = BackendJSON
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q",
			BackendJSON, BackendSQLite, c.Storage.Backend)
	}

	if c.UI.FlashSeconds <= 0 {
		return fmt.Errorf("ui.flash_seconds must be positive, got %d", c.UI.FlashSeconds)
	}

	switch c.UI.StartView {
	case "", "list":
		c.UI.StartView = "list"
	case "projects":
	default:
		return fmt.Errorf("ui.start_view must be \"list\" or \"projects\", got %q", c.UI.StartView)
	}

	return nil
}

// DataDir returns the configured data directory or the OS default.
func (c *AppConfig) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return DefaultDataDir()
}

// LogFile returns the configured log file or <data dir>/todo.log.
func (c *AppConfig) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir(), "todo.log")
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("export", cfg.Export)
	v.Set("log", cfg.Log)
	v.Set("ui", cfg.UI)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
