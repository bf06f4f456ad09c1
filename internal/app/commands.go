package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/ui"
	"github.com/nhle/todo-projects/internal/ui/command"
)

// executeCommand handles a line from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	c, err := command.Parse(line)
	if err != nil {
		return m.setFlash(err.Error(), true)
	}
	log.Debug("command", "line", line)

	var cmd tea.Cmd
	switch c.Kind {
	case command.Quit:
		return tea.Quit

	case command.Help:
		m.helpView = m.helpView.For(m.route())
		m.previousView = m.currentView
		m.currentView = ViewHelp

	case command.Projects:
		m.projects.SelectActive()
		m.currentView = ViewProjects

	case command.Switch:
		for _, p := range m.state.Projects {
			if strings.EqualFold(p.Name, c.Arg) {
				m.state.SelectProject(p.ID)
				m.todoList.Refresh()
				m.currentView = ViewList
				return nil
			}
		}
		return m.setFlash(fmt.Sprintf("No project named %q", c.Arg), true)

	case command.Add:
		if m.state.ActiveProject() == nil {
			return m.setFlash("No active project", true)
		}
		m.todoList, cmd = m.todoList.Add(c.Arg)
		m.currentView = ViewList

	case command.Filter:
		f, _ := model.ParseFilter(c.Arg)
		m.todoList = m.todoList.SetFilter(f)

	case command.Clear:
		m.todoList, cmd = m.todoList.ClearCompleted()
		if cmd == nil {
			return m.setFlash("No completed tasks", false)
		}

	case command.Export:
		cmd = func() tea.Msg { return ui.ExportMsg{} }

	case command.Settings:
		cmd = m.openSettings()
	}
	return cmd
}
