package projects

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

func TestCreateActivatesProject(t *testing.T) {
	state := model.NewState(testutil.SampleProjects())
	m := New(state, keys.DefaultKeyMap(), 80, 24)

	m, cmd := m.Create("  Garden ")
	require.NotNil(t, cmd)
	require.NotNil(t, state.ActiveProject())
	assert.Equal(t, "Garden", state.ActiveProject().Name)
	assert.Equal(t, uint64(3), state.ActiveProject().ID)
	assert.Equal(t, 2, m.SelectedIndex())

	_, cmd = m.Create("")
	assert.Nil(t, cmd)
	assert.Len(t, state.Projects, 3)
}

func TestRename(t *testing.T) {
	state := model.NewState(testutil.SampleProjects())
	m := New(state, keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Rename(2, "Office")
	require.NotNil(t, cmd)
	assert.Equal(t, "Office", state.Project(2).Name)

	_, cmd = m.Rename(2, " ")
	assert.Nil(t, cmd)
	assert.Equal(t, "Office", state.Project(2).Name)
}

func TestDeleteSelected(t *testing.T) {
	state := model.NewState(testutil.SampleProjects())
	m := New(state, keys.DefaultKeyMap(), 80, 24)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.SelectedIndex())

	m, cmd := m.DeleteSelected()
	require.NotNil(t, cmd)
	assert.Len(t, state.Projects, 1)
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, uint64(1), *state.ActiveProjectID)
}

func TestSelectOpensList(t *testing.T) {
	state := model.NewState(testutil.SampleProjects())
	m := New(state, keys.DefaultKeyMap(), 80, 24)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{Route: ui.RouteList}, cmd())
	assert.Equal(t, uint64(2), *state.ActiveProjectID)
}

func TestBackWithoutProjectStays(t *testing.T) {
	m := New(model.NewState(nil), keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
}

func TestFormOpensAndEscCancels(t *testing.T) {
	m := New(model.NewState(nil), keys.DefaultKeyMap(), 80, 24)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.True(t, m.Editing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
}
