package ui

import tea "github.com/charmbracelet/bubbletea"

// Route names a top-level screen.
type Route int

const (
	RouteProjects Route = iota
	RouteList
	RouteDetails
)

func (r Route) String() string {
	switch r {
	case RouteProjects:
		return "projects"
	case RouteDetails:
		return "details"
	default:
		return "list"
	}
}

// NavigateMsg asks the root model to switch screens. TodoID is only read
// for RouteDetails.
type NavigateMsg struct {
	Route  Route
	TodoID uint64
}

// ChangedMsg reports that a view mutated the shared state and the
// collection needs saving.
type ChangedMsg struct {
	// Reason is logged with the save.
	Reason string
}

// FlashMsg asks the root model to show a transient status message.
type FlashMsg struct {
	Text  string
	Error bool
}

// ExportMsg asks the root model to export the active project.
type ExportMsg struct{}

// Navigate returns a command emitting a NavigateMsg.
func Navigate(r Route, todoID uint64) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r, TodoID: todoID} }
}

// Changed returns a command emitting a ChangedMsg.
func Changed(reason string) tea.Cmd {
	return func() tea.Msg { return ChangedMsg{Reason: reason} }
}

// Flash returns a command emitting a FlashMsg.
func Flash(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return FlashMsg{Text: text, Error: isError} }
}

// FormWidth clamps a huh form width to the terminal.
func FormWidth(width int) int {
	w := width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// FormHeight clamps a huh form height to the terminal.
func FormHeight(height int) int {
	h := height - 4
	if h < 10 {
		h = 10
	}
	return h
}
