package projects

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/theme"
	"github.com/nhle/todo-projects/internal/ui"
)

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	confirm bool
}

// Model is the Bubble Tea model for the projects screen.
type Model struct {
	mode        projectMode
	state       *model.State
	keys        *keys.KeyMap
	selectedIdx int
	editingID   uint64
	isNew       bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a projects screen over the shared state.
func New(state *model.State, k *keys.KeyMap, width, height int) Model {
	m := Model{
		mode:  modeList,
		state: state,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
	m.SelectActive()
	return m
}

// SelectActive moves the cursor onto the active project.
func (m *Model) SelectActive() {
	m.selectedIdx = 0
	if m.state.ActiveProjectID == nil {
		return
	}
	for i, p := range m.state.Projects {
		if p.ID == *m.state.ActiveProjectID {
			m.selectedIdx = i
			return
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Editing reports whether a form is open, so global keys stay off.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode != modeList && msg.Type == tea.KeyEsc {
		m.mode = modeList
		return m, nil
	}

	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	projects := m.state.Projects
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.state.ActiveProject() == nil {
			return m, nil
		}
		return m, ui.Navigate(ui.RouteList, 0)

	case key.Matches(msg, m.keys.Down):
		if len(projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(projects)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(projects) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(projects) == 0 {
			return m, nil
		}
		m.state.SelectProject(projects[m.selectedIdx].ID)
		return m, ui.Navigate(ui.RouteList, 0)

	case key.Matches(msg, m.keys.Add):
		m.isNew = true
		m.editingID = 0
		m.fb.name = ""
		m.form = m.buildForm("New project")
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Rename):
		if len(projects) == 0 {
			return m, nil
		}
		p := projects[m.selectedIdx]
		m.isNew = false
		m.editingID = p.ID
		m.fb.name = p.Name
		m.form = m.buildForm("Rename project")
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(projects) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.state.Projects) {
		name = m.state.Projects[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete project %q?", name)).
				Description("Its tasks are deleted too. This cannot be undone.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		return m.saveProject()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		m.mode = modeList
		if m.fb.confirm {
			return m.DeleteSelected()
		}
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) saveProject() (Model, tea.Cmd) {
	if m.isNew {
		return m.Create(m.fb.name)
	}
	return m.Rename(m.editingID, m.fb.name)
}

// Create adds a project and opens it.
func (m Model) Create(name string) (Model, tea.Cmd) {
	p, ok := m.state.AddProject(name)
	if !ok {
		return m, nil
	}
	m.SelectActive()
	m.statusMsg = fmt.Sprintf("Created %q", p.Name)
	return m, tea.Batch(ui.Changed("add project"), ui.Navigate(ui.RouteList, 0))
}

// Rename renames the project with id.
func (m Model) Rename(id uint64, name string) (Model, tea.Cmd) {
	if !m.state.RenameProject(id, name) {
		return m, nil
	}
	m.statusMsg = "Project renamed"
	return m, ui.Changed("rename project")
}

// DeleteSelected removes the project under the cursor.
func (m Model) DeleteSelected() (Model, tea.Cmd) {
	if m.selectedIdx >= len(m.state.Projects) {
		return m, nil
	}
	p := m.state.Projects[m.selectedIdx]
	if !m.state.DeleteProject(p.ID) {
		return m, nil
	}
	if m.selectedIdx >= len(m.state.Projects) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.state.Projects) - 1
	}
	m.statusMsg = fmt.Sprintf("Deleted %q", p.Name)
	return m, ui.Changed("delete project")
}

// View renders the projects screen.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	if len(m.state.Projects) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects yet. Press 'n' to create one."))
	} else {
		active := m.state.ActiveProject()
		for i, p := range m.state.Projects {
			st := p.Stats()
			label := fmt.Sprintf("%s  %s", p.Name,
				theme.DimmedStyle.Render(fmt.Sprintf("%d/%d done", st.Completed, st.Total)))
			if active != nil && active.ID == p.ID {
				label = "● " + label
			} else {
				label = "  " + label
			}

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"enter open | n new | r rename | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedIndex returns the cursor position.
func (m Model) SelectedIndex() int {
	return m.selectedIdx
}
