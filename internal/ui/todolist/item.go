package todolist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/theme"
)

// TodoItem wraps a model.Todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo model.Todo
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Title }

// Title returns the todo title for the list.
func (i TodoItem) Title() string { return i.Todo.Title }

// Description returns a short summary line for the list.
func (i TodoItem) Description() string {
	done, total := i.Todo.SubtaskProgress()
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d subtasks", done, total)
}

// ItemDelegate implements list.ItemDelegate for rendering todos.
type ItemDelegate struct {
	// grabbed holds the id of the todo being moved, 0 when none. Shared
	// by reference with the todolist Model so updates are visible.
	grabbed *uint64
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single todo line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TodoItem)
	if !ok {
		return
	}
	t := ti.Todo
	isSelected := index == m.Index()

	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	title := t.Title
	if t.Completed {
		title = theme.CompletedStyle.Render(title)
	}

	extra := ""
	if desc := ti.Description(); desc != "" {
		extra += "  " + theme.DimmedStyle.Render(desc)
	}
	if t.Description != "" {
		extra += theme.DimmedStyle.Render("  ✎")
	}

	line := fmt.Sprintf("%s %s%s", theme.CheckStyle(t.Completed).Render(box), title, extra)

	switch {
	case d.grabbed != nil && *d.grabbed == t.ID:
		line = theme.GrabbedItemStyle.Render("≡ " + line)
	case isSelected:
		line = theme.SelectedItemStyle.Render(line)
	default:
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
