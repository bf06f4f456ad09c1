package todolist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/theme"
	"github.com/nhle/todo-projects/internal/ui"
)

type listMode int

const (
	modeNormal listMode = iota
	modeAdding
	modeEditing
	modeConfirmClear
)

// EmptyText is shown when the active project has no todos.
const EmptyText = "No tasks yet. Add one above."

// Model is the todo list view of the active project.
type Model struct {
	list        list.Model
	state       *model.State
	keys        *keys.KeyMap
	mode        listMode
	input       textinput.Model
	editingID   uint64
	grabbed     *uint64
	confirmForm *huh.Form
	confirm     *bool
	width       int
	height      int
}

// New creates a todo list over the shared state.
func New(state *model.State, k *keys.KeyMap, width, height int) Model {
	grabbed := new(uint64)
	delegate := ItemDelegate{grabbed: grabbed}
	l := list.New([]list.Item{}, delegate, width, listHeight(height))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = theme.DimmedStyle.PaddingLeft(2)

	in := textinput.New()
	in.Placeholder = "What needs to be done?"
	in.Prompt = "+ "
	in.Width = width - 4

	m := Model{
		list:    l,
		state:   state,
		keys:    k,
		input:   in,
		grabbed: grabbed,
		confirm: new(bool),
		width:   width,
		height:  height,
	}
	m.Refresh()
	return m
}

// listHeight leaves room for the tabs, input and footer lines.
func listHeight(height int) int {
	h := height - 6
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Editing reports whether text input or a form has focus.
func (m Model) Editing() bool {
	return m.mode != modeNormal
}

// Grabbed returns the id of the todo picked up for moving, 0 when none.
func (m Model) Grabbed() uint64 {
	return *m.grabbed
}

// Refresh rebuilds the list items from the active project and filter,
// keeping the cursor in range.
func (m *Model) Refresh() {
	var todos []model.Todo
	if p := m.state.ActiveProject(); p != nil {
		todos = model.Visible(p.Todos, m.state.Filter)
	}
	items := make([]list.Item, len(todos))
	for i, t := range todos {
		items[i] = TodoItem{Todo: t}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Items returns the todos currently listed, in display order.
func (m Model) Items() []model.Todo {
	items := m.list.Items()
	out := make([]model.Todo, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(TodoItem); ok {
			out = append(out, ti.Todo)
		}
	}
	return out
}

// Selected returns the todo under the cursor.
func (m Model) Selected() (model.Todo, bool) {
	ti, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return model.Todo{}, false
	}
	return ti.Todo, true
}

// SelectID moves the cursor onto the todo with id, if listed.
func (m *Model) SelectID(id uint64) {
	for i, t := range m.Items() {
		if t.ID == id {
			m.list.Select(i)
			return
		}
	}
}

// Update handles messages for the todo list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdding, modeEditing:
			return m.handleInputKeys(msg)
		case modeConfirmClear:
			if msg.Type == tea.KeyEsc {
				m.mode = modeNormal
				return m, nil
			}
			return m.updateConfirm(msg)
		}
		return m.handleNormalKeys(msg)
	}

	if m.mode == modeConfirmClear {
		return m.updateConfirm(msg)
	}
	if m.mode != modeNormal {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.mode == modeAdding {
			title := m.input.Value()
			m.input.Reset()
			return m.Add(title)
		}
		id := m.editingID
		m.closeInput()
		return m.EditTitle(id, m.input.Value())

	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.editingID = 0
	m.input.Blur()
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	pid, hasProject := m.activeID()

	switch {
	case key.Matches(msg, m.keys.Back):
		if *m.grabbed != 0 {
			*m.grabbed = 0
			return m, nil
		}
		return m, ui.Navigate(ui.RouteProjects, 0)

	case key.Matches(msg, m.keys.Projects):
		*m.grabbed = 0
		return m, ui.Navigate(ui.RouteProjects, 0)

	case key.Matches(msg, m.keys.Export):
		return m, func() tea.Msg { return ui.ExportMsg{} }

	case key.Matches(msg, m.keys.FilterAll):
		return m.SetFilter(model.FilterAll), nil

	case key.Matches(msg, m.keys.FilterActive):
		return m.SetFilter(model.FilterActive), nil

	case key.Matches(msg, m.keys.FilterCompleted):
		return m.SetFilter(model.FilterCompleted), nil

	case key.Matches(msg, m.keys.CycleFilter):
		return m.SetFilter(m.state.Filter.Next()), nil
	}

	if !hasProject {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdding
		m.input.Reset()
		m.input.Placeholder = "What needs to be done?"
		m.input.Prompt = "+ "
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ClearCompleted):
		if model.Count(m.state.ActiveProject().Todos, model.FilterCompleted) == 0 {
			return m, ui.Flash("No completed tasks", false)
		}
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmClear
		return m, m.confirmForm.Init()
	}

	t, ok := m.Selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		*m.grabbed = 0
		return m, ui.Navigate(ui.RouteDetails, t.ID)

	case key.Matches(msg, m.keys.Toggle):
		m.state.ToggleTodo(pid, t.ID)
		m.Refresh()
		return m, ui.Changed("toggle todo")

	case key.Matches(msg, m.keys.Edit):
		m.mode = modeEditing
		m.editingID = t.ID
		m.input.Prompt = "✎ "
		m.input.Placeholder = ""
		m.input.SetValue(t.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Delete):
		m.state.RemoveTodo(pid, t.ID)
		if *m.grabbed == t.ID {
			*m.grabbed = 0
		}
		m.Refresh()
		return m, ui.Changed("remove todo")

	case key.Matches(msg, m.keys.Grab):
		return m.GrabOrDrop(t.ID)
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) activeID() (uint64, bool) {
	p := m.state.ActiveProject()
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// SetFilter switches the visible subset.
func (m Model) SetFilter(f model.Filter) Model {
	m.state.Filter = f
	m.Refresh()
	return m
}

// Add appends a todo to the active project. Blank titles are ignored.
func (m Model) Add(title string) (Model, tea.Cmd) {
	pid, ok := m.activeID()
	if !ok {
		return m, nil
	}
	t, ok := m.state.AddTodo(pid, title)
	if !ok {
		return m, nil
	}
	m.Refresh()
	m.SelectID(t.ID)
	return m, ui.Changed("add todo")
}

// EditTitle replaces the title of a todo; an empty title is kept as is.
func (m Model) EditTitle(id uint64, title string) (Model, tea.Cmd) {
	pid, ok := m.activeID()
	if !ok || !m.state.EditTodoTitle(pid, id, title) {
		return m, nil
	}
	m.Refresh()
	return m, ui.Changed("edit todo")
}

// GrabOrDrop picks up the todo with id, or drops the one already held
// onto its slot. Acting on the held todo again puts it back.
func (m Model) GrabOrDrop(id uint64) (Model, tea.Cmd) {
	held := *m.grabbed
	switch {
	case held == 0:
		*m.grabbed = id
		return m, nil
	case held == id:
		*m.grabbed = 0
		return m, nil
	}

	*m.grabbed = 0
	pid, ok := m.activeID()
	if !ok || !m.state.ReorderTodo(pid, held, id) {
		return m, nil
	}
	m.Refresh()
	m.SelectID(held)
	return m, ui.Changed("reorder todo")
}

// ClearCompleted removes the completed todos of the active project.
func (m Model) ClearCompleted() (Model, tea.Cmd) {
	pid, ok := m.activeID()
	if !ok {
		return m, nil
	}
	n := m.state.ClearCompleted(pid)
	m.Refresh()
	if n == 0 {
		return m, nil
	}
	return m, tea.Batch(
		ui.Changed("clear completed"),
		ui.Flash(fmt.Sprintf("Cleared %d completed", n), false),
	)
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear completed tasks?").
				Description("This cannot be undone.").
				Affirmative("Clear").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeNormal
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeNormal
		if *m.confirm {
			return m.ClearCompleted()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeNormal
		return m, nil
	}
	return m, cmd
}

// View renders the todo list.
func (m Model) View() string {
	if m.mode == modeConfirmClear && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	p := m.state.ActiveProject()
	if p == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.DimmedStyle.Render("No project selected. Press p to choose or create one."),
		)
	}

	var b strings.Builder
	b.WriteString(m.renderTabs(p.Todos))
	b.WriteString("\n")

	switch m.mode {
	case modeAdding, modeEditing:
		b.WriteString(m.input.View())
	default:
		b.WriteString(theme.HelpStyle.Render("  a add · e edit · space toggle · m move · enter details"))
	}
	b.WriteString("\n\n")

	switch {
	case len(p.Todos) == 0:
		b.WriteString(theme.DimmedStyle.PaddingLeft(2).Render(EmptyText))
	case len(m.list.Items()) == 0:
		b.WriteString(theme.DimmedStyle.PaddingLeft(2).Render(
			fmt.Sprintf("No %s tasks.", strings.ToLower(m.state.Filter.String()))))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	footer := fmt.Sprintf("%d left", model.Count(p.Todos, model.FilterActive))
	if *m.grabbed != 0 {
		footer += " · moving: press m on the target slot, esc to cancel"
	}
	b.WriteString(theme.DimmedStyle.PaddingLeft(2).Render(footer))

	return b.String()
}

func (m Model) renderTabs(todos []model.Todo) string {
	tabs := make([]string, 0, len(model.Filters))
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s (%d)", i+1, f, model.Count(todos, f))
		if f == m.state.Filter {
			tabs = append(tabs, theme.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, theme.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
	m.input.Width = width - 4
}
