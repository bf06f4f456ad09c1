package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/theme"
	"github.com/nhle/todo-projects/internal/ui"
)

var screenNotes = map[ui.Route]string{
	ui.RouteProjects: "Projects: enter opens a project, n creates one, r renames, d deletes.",
	ui.RouteList:     "Tasks: a adds, e edits the title inline, m picks a task up and m again drops it onto another slot.",
	ui.RouteDetails:  "Details: a adds a subtask, space toggles it, e edits the description (ctrl+s saves).",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	from   ui.Route
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// For records the screen the overlay was opened from.
func (m Model) For(r ui.Route) Model {
	m.from = r
	return m
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	note := theme.HelpStyle.Render(screenNotes[m.from])

	content := lipgloss.JoinVertical(lipgloss.Left, title, note, "", helpText)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
