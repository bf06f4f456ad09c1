package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Kind identifies a palette command.
type Kind int

const (
	Quit Kind = iota
	Help
	Projects
	Switch
	Add
	Filter
	Clear
	Export
	Settings
)

// Command is a parsed palette line.
type Command struct {
	Kind Kind
	Arg  string
}

// Suggestions are offered for completion while typing.
var Suggestions = []string{
	"add ",
	"clear",
	"export",
	"filter active",
	"filter all",
	"filter completed",
	"help",
	"project ",
	"projects",
	"quit",
	"settings",
}

// Parse reads a palette line. Command words are case-insensitive;
// arguments keep their case.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	word, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(word) {
	case "quit", "q":
		return Command{Kind: Quit}, nil
	case "help":
		return Command{Kind: Help}, nil
	case "projects":
		return Command{Kind: Projects}, nil
	case "project":
		if arg == "" {
			return Command{Kind: Projects}, nil
		}
		return Command{Kind: Switch, Arg: arg}, nil
	case "add", "todo":
		if arg == "" {
			return Command{}, fmt.Errorf("%s needs a title", word)
		}
		return Command{Kind: Add, Arg: arg}, nil
	case "filter":
		if _, err := model.ParseFilter(arg); err != nil {
			return Command{}, err
		}
		return Command{Kind: Filter, Arg: strings.ToLower(arg)}, nil
	case "clear":
		return Command{Kind: Clear}, nil
	case "export", "pdf":
		return Command{Kind: Export}, nil
	case "settings", "config":
		return Command{Kind: Settings}, nil
	case "":
		return Command{}, fmt.Errorf("empty command")
	default:
		return Command{}, fmt.Errorf("unknown command %q", word)
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Suggestions)
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open clears the input and focuses it.
func (m Model) Open() (Model, tea.Cmd) {
	m.input.Reset()
	return m, m.input.Focus()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command")
	input := m.input.View()
	hint := theme.HelpStyle.Render("add <title> · project <name> · filter all|active|completed · clear · export · quit")

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", hint)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
