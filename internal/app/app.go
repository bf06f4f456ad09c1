package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/store"
	"github.com/nhle/todo-projects/internal/ui"
	"github.com/nhle/todo-projects/internal/ui/command"
	configview "github.com/nhle/todo-projects/internal/ui/config"
	"github.com/nhle/todo-projects/internal/ui/details"
	helpview "github.com/nhle/todo-projects/internal/ui/help"
	"github.com/nhle/todo-projects/internal/ui/projects"
	"github.com/nhle/todo-projects/internal/ui/todolist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewProjects ViewState = iota
	ViewList
	ViewDetails
	ViewHelp
	ViewCommand
	ViewSettings
	ViewExport
)

// Model is the root Bubble Tea model. It owns the shared state, routes
// between screens and persists every change through the store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	cfg          *model.AppConfig
	configPath   string
	store        store.Store
	state        *model.State
	keys         *keys.KeyMap

	projects projects.Model
	todoList todolist.Model
	details  details.Model
	helpView helpview.Model
	palette  command.Model
	settings configview.Model

	exportForm *huh.Form
	exportPath *string

	saver *saver
	flash flash
	ready bool
}

// Option configures the root model.
type Option func(*Model)

// WithConfigPath makes the settings screen write its changes to path.
func WithConfigPath(path string) Option {
	return func(m *Model) { m.configPath = path }
}

// New creates the root model over projects loaded from s.
func New(cfg *model.AppConfig, s store.Store, loaded []model.Project, opts ...Option) Model {
	k := keys.DefaultKeyMap()
	state := model.NewState(loaded)

	m := Model{
		cfg:        cfg,
		store:      s,
		state:      state,
		keys:       k,
		layout:     ui.NewLayout(80, 24),
		projects:   projects.New(state, k, 80, 22),
		todoList:   todolist.New(state, k, 80, 22),
		details:    details.New(state, k, 80, 22),
		helpView:   helpview.New(k, 80, 22),
		palette:    command.New(80, 22),
		settings:   configview.New(80, 22),
		exportPath: new(string),
		saver:      &saver{},
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.currentView = ViewList
	if cfg.UI.StartView == "projects" || state.ActiveProject() == nil {
		m.currentView = ViewProjects
	}
	return m
}

// State exposes the shared in-memory state.
func (m Model) State() *model.State {
	return m.state
}

// CurrentView returns the screen on display.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Flash returns the transient status message, if any.
func (m Model) Flash() (string, bool) {
	return m.flash.text, m.flash.isError
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle(model.AppName)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.projects.SetSize(w, h)
		m.todoList.SetSize(w, h)
		m.details.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.palette.SetSize(w, h)
		m.settings.SetSize(w, h)
		return m, nil

	case ui.NavigateMsg:
		return m.navigate(msg)

	case ui.ChangedMsg:
		return m, m.save(msg.Reason)

	case saveResultMsg:
		return m.handleSaveResult(msg)

	case ui.FlashMsg:
		cmd := m.setFlash(msg.Text, msg.Error)
		return m, cmd

	case clearFlashMsg:
		if msg.seq == m.flash.seq {
			m.flash = flash{seq: m.flash.seq}
		}
		return m, nil

	case ui.ExportMsg:
		return m.startExport()

	case configview.SavedMsg:
		m.currentView = m.previousView
		*m.cfg = msg.Config
		return m, saveConfigCmd(m.configPath, msg.Config)

	case configview.ClosedMsg:
		m.currentView = m.previousView
		return m, nil

	case configSavedMsg:
		cmd := m.handleConfigSaved(msg)
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case exportResultMsg:
		cmd := m.handleExportResult(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewExport {
			return m.updateExportForm(msg)
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		if m.editing() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.helpView = m.helpView.For(m.route())
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
			m.currentView = m.previousView
			return m, nil

		case key.Matches(msg, m.keys.Command):
			if m.currentView != ViewHelp {
				m.previousView = m.currentView
			}
			m.currentView = ViewCommand
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Open()
			return m, cmd

		case key.Matches(msg, m.keys.Settings):
			cmd := m.openSettings()
			return m, cmd
		}
	}

	if m.currentView == ViewExport {
		return m.updateExportForm(msg)
	}
	return m.updateActiveView(msg)
}

// editing reports whether the active view has a text input or form
// focused, in which case single-letter global keys belong to it.
func (m Model) editing() bool {
	switch m.currentView {
	case ViewProjects:
		return m.projects.Editing()
	case ViewList:
		return m.todoList.Editing()
	case ViewDetails:
		return m.details.Editing()
	case ViewCommand, ViewSettings:
		return true
	}
	return false
}

// route maps the current view to the screen the help overlay describes.
func (m Model) route() ui.Route {
	switch m.currentView {
	case ViewProjects:
		return ui.RouteProjects
	case ViewDetails:
		return ui.RouteDetails
	}
	return ui.RouteList
}

func (m Model) navigate(msg ui.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Route {
	case ui.RouteProjects:
		m.projects.SelectActive()
		m.currentView = ViewProjects
	case ui.RouteDetails:
		m.details = m.details.Open(msg.TodoID)
		m.currentView = ViewDetails
	default:
		if m.state.ActiveProject() == nil {
			m.currentView = ViewProjects
			return m, nil
		}
		m.todoList.Refresh()
		if msg.TodoID != 0 {
			m.todoList.SelectID(msg.TodoID)
		}
		m.currentView = ViewList
	}
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewProjects:
		m.projects, cmd = m.projects.Update(msg)
	case ViewList:
		m.todoList, cmd = m.todoList.Update(msg)
	case ViewDetails:
		m.details, cmd = m.details.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.palette, cmd = m.palette.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Todo", m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.flash.text, m.flash.isError)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewProjects:
		return m.projects.View()
	case ViewList:
		return m.todoList.View()
	case ViewDetails:
		return m.details.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.palette.View()
	case ViewSettings:
		return m.settings.View()
	case ViewExport:
		if m.exportForm == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.exportForm.View())
	default:
		return ""
	}
}

// headerStatus names the active project and its open task count.
func (m Model) headerStatus() string {
	p := m.state.ActiveProject()
	if p == nil {
		return "no project"
	}
	st := p.Stats()
	return fmt.Sprintf("%s · %d active", p.Name, st.Active)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewSettings:
		return "tab next | enter submit | esc cancel"
	case ViewExport:
		return "enter export | esc cancel"
	case ViewProjects:
		return "enter open | n new | r rename | d delete | q quit"
	case ViewDetails:
		return "a subtask | space toggle | e description | esc back"
	default:
		return "q quit | ? help | a add | space toggle | m move | 1/2/3 filter | p projects | P export | : command"
	}
}
