package todolist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-projects/internal/keys"
	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/testutil"
	"github.com/nhle/todo-projects/internal/ui"
)

func newList(t *testing.T, titles ...string) (Model, *model.State) {
	t.Helper()
	state := model.NewState([]model.Project{{ID: 1, Name: "P", Todos: []model.Todo{}}})
	for _, title := range titles {
		_, ok := state.AddTodo(1, title)
		require.True(t, ok)
	}
	return New(state, keys.DefaultKeyMap(), 80, 24), state
}

func titles(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Title
	}
	return out
}

func press(m Model, s string) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestAddIgnoresBlankTitles(t *testing.T) {
	m, state := newList(t)

	m, cmd := m.Add("   ")
	assert.Nil(t, cmd)
	assert.Empty(t, state.ActiveProject().Todos)

	m, cmd = m.Add("  water plants ")
	require.NotNil(t, cmd)
	assert.Equal(t, ui.ChangedMsg{Reason: "add todo"}, cmd())
	assert.Equal(t, []string{"water plants"}, titles(m.Items()))
}

func TestGrabAndDropReorders(t *testing.T) {
	m, state := newList(t, "a", "b", "c")

	m, cmd := m.GrabOrDrop(1)
	assert.Nil(t, cmd)
	assert.Equal(t, uint64(1), m.Grabbed())

	m, cmd = m.GrabOrDrop(3)
	require.NotNil(t, cmd)
	assert.Equal(t, uint64(0), m.Grabbed())
	assert.Equal(t, []string{"b", "a", "c"}, titles(state.ActiveProject().Todos))

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.Title)
}

func TestGrabSameTodoCancels(t *testing.T) {
	m, state := newList(t, "a", "b")

	m, _ = m.GrabOrDrop(2)
	m, cmd := m.GrabOrDrop(2)
	assert.Nil(t, cmd)
	assert.Equal(t, uint64(0), m.Grabbed())
	assert.Equal(t, []string{"a", "b"}, titles(state.ActiveProject().Todos))
}

func TestEscCancelsGrab(t *testing.T) {
	m, _ := newList(t, "a", "b")

	m, _ = press(m, "m")
	require.Equal(t, uint64(1), m.Grabbed())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, uint64(0), m.Grabbed())
}

func TestFilterKeys(t *testing.T) {
	m, state := newList(t, "a", "b", "c")
	state.ToggleTodo(1, 2)
	m.Refresh()

	m, _ = press(m, "2")
	assert.Equal(t, []string{"a", "c"}, titles(m.Items()))

	m, _ = press(m, "3")
	assert.Equal(t, []string{"b"}, titles(m.Items()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterAll, state.Filter)
	assert.Len(t, m.Items(), 3)
}

func TestToggleKey(t *testing.T) {
	m, state := newList(t, "a")

	_, cmd := press(m, "x")
	require.NotNil(t, cmd)
	assert.True(t, state.ActiveProject().Todos[0].Completed)
}

func TestInlineEdit(t *testing.T) {
	m, state := newList(t, "draft")

	m, _ = press(m, "e")
	require.True(t, m.Editing())
	m, _ = press(m, "!")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.False(t, m.Editing())
	assert.Equal(t, "draft!", state.ActiveProject().Todos[0].Title)
}

func TestClearCompleted(t *testing.T) {
	m, state := newList(t, "a", "b")

	_, cmd := m.ClearCompleted()
	assert.Nil(t, cmd)

	state.ToggleTodo(1, 1)
	m, cmd = m.ClearCompleted()
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"b"}, titles(m.Items()))
}

func TestEnterOpensDetails(t *testing.T) {
	state := model.NewState(testutil.SampleProjects())
	m := New(state, keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{Route: ui.RouteDetails, TodoID: 1}, cmd())
}
