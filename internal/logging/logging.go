// Package logging configures the process-wide charmbracelet/log logger.
//
// The terminal belongs to the UI while it runs, so log output goes to a
// file under the data directory instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhle/todo-projects/internal/model"
)

// Options controls the default logger.
type Options struct {
	Level     log.Level
	Formatter log.Formatter
	Prefix    string
}

// OptionsFor derives logger options from the log section of cfg.
// Unknown levels fall back to info and unknown formats to text.
func OptionsFor(cfg model.LogConfig) Options {
	level, err := log.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	return Options{
		Level:     level,
		Formatter: ParseFormatter(cfg.Format),
		Prefix:    "todo",
	}
}

// ParseFormatter maps "json" and "logfmt" to their formatters; anything
// else is text.
func ParseFormatter(s string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
	})
}

// Setup opens cfg.LogFile() for appending and installs a logger on it as
// the package default. The returned closer releases the file.
func Setup(cfg *model.AppConfig) (io.Closer, error) {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	log.SetDefault(New(f, OptionsFor(cfg.Log)))
	return f, nil
}
