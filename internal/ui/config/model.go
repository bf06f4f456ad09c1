package config

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/ui"
)

// SavedMsg carries the edited configuration once the form is submitted.
type SavedMsg struct {
	Config model.AppConfig
}

// ClosedMsg signals the settings view was dismissed without saving.
type ClosedMsg struct{}

// formValues is shared with the huh fields, so it lives on the heap and
// survives copies of Model.
type formValues struct {
	backend      string
	dataDir      string
	exportDir    string
	exportPrompt bool
	flashSeconds string
	startView    string
	logLevel     string
}

// Model is the settings screen.
type Model struct {
	base   model.AppConfig
	form   *huh.Form
	values *formValues
	width  int
	height int
}

// New creates a settings view.
func New(width, height int) Model {
	return Model{values: &formValues{}, width: width, height: height}
}

// Open loads cfg into a fresh form.
func (m Model) Open(cfg model.AppConfig) (Model, tea.Cmd) {
	m.base = cfg
	*m.values = formValues{
		backend:      cfg.Storage.Backend,
		dataDir:      cfg.Storage.DataDir,
		exportDir:    cfg.Export.Dir,
		exportPrompt: cfg.Export.Prompt,
		flashSeconds: strconv.Itoa(cfg.UI.FlashSeconds),
		startView:    cfg.UI.StartView,
		logLevel:     cfg.Log.Level,
	}
	m.form = m.buildForm()
	return m, m.form.Init()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Description("Takes effect on the next start").
				Options(
					huh.NewOption("JSON file (projects.json)", model.BackendJSON),
					huh.NewOption("SQLite (projects.db)", model.BackendSQLite),
				).
				Value(&m.values.backend),
			huh.NewInput().
				Title("Data directory").
				Description("Empty means the per-user config directory").
				Value(&m.values.dataDir),
			huh.NewSelect[string]().
				Title("Start on").
				Options(
					huh.NewOption("Task list", "list"),
					huh.NewOption("Projects", "projects"),
				).
				Value(&m.values.startView),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Export directory").
				Description("Empty means ~/Downloads").
				Value(&m.values.exportDir),
			huh.NewConfirm().
				Title("Ask where to save each export?").
				Value(&m.values.exportPrompt),
			huh.NewInput().
				Title("Status message seconds").
				Value(&m.values.flashSeconds).
				Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.values.logLevel),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.form = nil
		return m, func() tea.Msg { return ClosedMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.Result()
		m.form = nil
		if err != nil {
			return m, ui.Flash(err.Error(), true)
		}
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return ClosedMsg{} }
	}
	return m, cmd
}

// Result applies the form values to the configuration it was opened with.
func (m Model) Result() (model.AppConfig, error) {
	cfg := m.base
	v := m.values

	cfg.Storage.Backend = v.backend
	cfg.Storage.DataDir = strings.TrimSpace(v.dataDir)
	cfg.Export.Dir = strings.TrimSpace(v.exportDir)
	cfg.Export.Prompt = v.exportPrompt
	cfg.UI.StartView = v.startView
	cfg.Log.Level = v.logLevel

	secs, err := strconv.Atoi(strings.TrimSpace(v.flashSeconds))
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("status message seconds: %w", err)
	}
	cfg.UI.FlashSeconds = secs

	if err := cfg.Validate(); err != nil {
		return model.AppConfig{}, err
	}
	return cfg, nil
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1).Render("Settings")
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}
