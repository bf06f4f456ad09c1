package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todo-projects/internal/model"
)

// Export errors. Anything else returned by Export wraps a render or I/O
// failure.
var (
	ErrNoActiveProject = errors.New("no active project selected")
	ErrProjectNotFound = errors.New("active project not found")
	ErrSaveCanceled    = errors.New("save canceled")
)

// DestinationPicker decides where a project's report is written.
type DestinationPicker interface {
	Destination(ctx context.Context, p model.Project, now time.Time) (string, error)
}

// DownloadsPicker writes to <Dir>/<name>_<unix seconds>.pdf. An empty Dir
// means ~/Downloads, or the temp directory when there is no home.
type DownloadsPicker struct {
	Dir string
}

func (d DownloadsPicker) Destination(_ context.Context, p model.Project, now time.Time) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = DownloadsDir()
	}
	return filepath.Join(dir, FileName(p, now)), nil
}

// FixedPathPicker always writes to Path.
type FixedPathPicker struct {
	Path string
}

func (f FixedPathPicker) Destination(context.Context, model.Project, time.Time) (string, error) {
	if f.Path == "" {
		return "", errors.New("no output path given")
	}
	return f.Path, nil
}

// PromptPicker carries the answer to an interactive save prompt. A
// canceled or blank answer yields ErrSaveCanceled; a leading ~ is
// expanded and a missing .pdf extension added.
type PromptPicker struct {
	Path     string
	Canceled bool
}

func (pp PromptPicker) Destination(context.Context, model.Project, time.Time) (string, error) {
	path := strings.TrimSpace(pp.Path)
	if pp.Canceled || path == "" {
		return "", ErrSaveCanceled
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		path += ".pdf"
	}
	return path, nil
}

// DownloadsDir returns ~/Downloads, or the temp directory when the home
// directory is unknown.
func DownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return os.TempDir()
	}
	return filepath.Join(home, "Downloads")
}

// FileName returns "<name>_<unix seconds>.pdf" with slashes in the
// project name replaced by dashes.
func FileName(p model.Project, now time.Time) string {
	return safeName(p.Name) + "_" + strconv.FormatInt(now.Unix(), 10) + ".pdf"
}

// SuggestedPath is the default answer offered by a save prompt.
func SuggestedPath(dir string, p model.Project) string {
	if dir == "" {
		dir = DownloadsDir()
	}
	return filepath.Join(dir, safeName(p.Name)+".pdf")
}

func safeName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

// Exporter renders the active project and writes it where Picker says.
type Exporter struct {
	Picker DestinationPicker
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewExporter returns an Exporter using picker.
func NewExporter(picker DestinationPicker) *Exporter {
	return &Exporter{Picker: picker, Now: time.Now}
}

// Export writes the report of the project identified by activeID and
// returns the path it was written to.
func (e *Exporter) Export(ctx context.Context, projects []model.Project, activeID *uint64) (string, error) {
	if activeID == nil {
		return "", ErrNoActiveProject
	}
	var project *model.Project
	for i := range projects {
		if projects[i].ID == *activeID {
			project = &projects[i]
			break
		}
	}
	if project == nil {
		return "", ErrProjectNotFound
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	dest, err := e.Picker.Destination(ctx, *project, now)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := writeFile(dest, *project, Options{Now: now}); err != nil {
		log.Error("export failed", "project", project.Name, "dest", dest, "err", err)
		return "", err
	}

	log.Info("exported report", "project", project.Name, "dest", dest)
	return dest, nil
}

func writeFile(dest string, p model.Project, opts Options) error {
	data, err := Render(p, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
