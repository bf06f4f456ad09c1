package details

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/theme"
	"github.com/nhle/todo-projects/internal/ui"
)

type detailMode int

const (
	modeView detailMode = iota
	modeAddSubtask
	modeEditDescription
)

// Model is the details screen of one todo: its description and subtasks.
type Model struct {
	state    *model.State
	keys     *keys.KeyMap
	todoID   uint64
	cursor   int
	mode     detailMode
	input    textinput.Model
	editor   textarea.Model
	viewport viewport.Model
	rendered string
	md       *markdown
	width    int
	height   int
}

// New creates a details view over the shared state.
func New(state *model.State, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	in := textinput.New()
	in.Placeholder = "Subtask title"
	in.Prompt = "+ "

	ed := textarea.New()
	ed.Placeholder = "Describe the task (markdown)"
	ed.ShowLineNumbers = false

	m := Model{
		state:    state,
		keys:     k,
		input:    in,
		editor:   ed,
		viewport: vp,
		md:       &markdown{},
	}
	m.SetSize(width, height)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open shows the todo with id and resets the cursor.
func (m Model) Open(todoID uint64) Model {
	m.todoID = todoID
	m.cursor = 0
	m.mode = modeView
	m.renderDescription()
	m.refresh()
	m.viewport.GotoTop()
	return m
}

// TodoID returns the todo on display.
func (m Model) TodoID() uint64 {
	return m.todoID
}

// Cursor returns the index of the highlighted subtask.
func (m Model) Cursor() int {
	return m.cursor
}

// Editing reports whether an input has focus.
func (m Model) Editing() bool {
	return m.mode != modeView
}

func (m Model) todo() (uint64, *model.Todo) {
	p := m.state.ActiveProject()
	if p == nil {
		return 0, nil
	}
	return p.ID, m.state.Todo(p.ID, m.todoID)
}

// Update handles messages for the details view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAddSubtask:
			return m.handleSubtaskInput(msg)
		case modeEditDescription:
			return m.handleEditor(msg)
		}
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeAddSubtask:
		m.input, cmd = m.input.Update(msg)
	case modeEditDescription:
		m.editor, cmd = m.editor.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		return m, ui.Navigate(ui.RouteList, 0)
	}

	pid, t := m.todo()
	if t == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(t.Subtasks) > 0 {
			m.cursor = (m.cursor + 1) % len(t.Subtasks)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(t.Subtasks) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(t.Subtasks) - 1
			}
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAddSubtask
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Edit):
		m.mode = modeEditDescription
		m.editor.SetValue(t.Description)
		return m, m.editor.Focus()

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(t.Subtasks) {
			m.state.ToggleSubtask(pid, t.ID, t.Subtasks[m.cursor].ID)
			m.refresh()
			return m, ui.Changed("toggle subtask")
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(t.Subtasks) {
			m.state.RemoveSubtask(pid, t.ID, t.Subtasks[m.cursor].ID)
			if m.cursor >= len(t.Subtasks) && m.cursor > 0 {
				m.cursor--
			}
			m.refresh()
			return m, ui.Changed("remove subtask")
		}
		return m, nil
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSubtaskInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := m.input.Value()
		m.input.Reset()
		return m.AddSubtask(title)
	case tea.KeyEsc:
		m.mode = modeView
		m.input.Blur()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		m.mode = modeView
		m.editor.Blur()
		return m.SetDescription(m.editor.Value())
	case msg.Type == tea.KeyEsc:
		m.mode = modeView
		m.editor.Blur()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// AddSubtask appends a subtask to the open todo and keeps the input open
// for the next one. Blank titles are ignored.
func (m Model) AddSubtask(title string) (Model, tea.Cmd) {
	pid, t := m.todo()
	if t == nil {
		return m, nil
	}
	if _, ok := m.state.AddSubtask(pid, t.ID, title); !ok {
		return m, nil
	}
	m.cursor = len(t.Subtasks) - 1
	m.refresh()
	return m, ui.Changed("add subtask")
}

// SetDescription replaces the open todo's description.
func (m Model) SetDescription(text string) (Model, tea.Cmd) {
	pid, t := m.todo()
	if t == nil {
		return m, nil
	}
	m.state.UpdateDescription(pid, t.ID, text)
	m.renderDescription()
	m.refresh()
	return m, ui.Changed("update description")
}

func (m *Model) renderDescription() {
	m.rendered = ""
	if _, t := m.todo(); t != nil {
		m.rendered = m.md.Render(t.Description, m.width-4)
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// View renders the details view.
func (m Model) View() string {
	if _, t := m.todo(); t == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}

	switch m.mode {
	case modeEditDescription:
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.SectionStyle.Render("Description"),
			m.editor.View(),
			theme.HelpStyle.Render("ctrl+s save · esc cancel"),
		)
	case modeAddSubtask:
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.input.View())
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	_, t := m.todo()
	if t == nil {
		return ""
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := t.Title
	if title == "" {
		title = theme.DimmedStyle.Render("(untitled)")
	}
	status := theme.CheckStyle(t.Completed).Render("[ ] active")
	if t.Completed {
		status = theme.CheckStyle(true).Render("[x] completed")
	}
	sections = append(sections, titleStyle.Render(title)+"  "+status)

	sections = append(sections, theme.SectionStyle.Render("Description"))
	if m.rendered == "" {
		sections = append(sections, theme.DimmedStyle.Render("No description. Press e to add one."))
	} else {
		sections = append(sections, m.rendered)
	}

	done, total := t.SubtaskProgress()
	sections = append(sections, theme.SectionStyle.Render(fmt.Sprintf("Subtasks %d/%d", done, total)))
	if total == 0 {
		sections = append(sections, theme.DimmedStyle.Render("No subtasks. Press a to add one."))
	}
	var lines []string
	for i, st := range t.Subtasks {
		box := theme.CheckStyle(st.Completed).Render(checkbox(st.Completed))
		label := st.Title
		if st.Completed {
			label = theme.CompletedStyle.Render(label)
		}
		line := box + " " + label
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, theme.HelpStyle.Render(
		"a add subtask · space toggle · d delete · e edit description · esc back"))

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(sections, "\n\n"))
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 1
	m.input.Width = width - 4
	m.editor.SetWidth(width - 4)
	m.editor.SetHeight(max(height-4, 3))
	m.renderDescription()
	m.refresh()
}
