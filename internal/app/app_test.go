package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/testutil"
	"github.com/nhle/todo-projects/internal/ui"
	"github.com/nhle/todo-projects/internal/ui/command"
	configview "github.com/nhle/todo-projects/internal/ui/config"
)

// memStore records every saved snapshot.
type memStore struct {
	mu    sync.Mutex
	saves [][]model.Project
	err   error
}

func (s *memStore) Load(context.Context) ([]model.Project, error) { return nil, nil }

func (s *memStore) Save(_ context.Context, projects []model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, projects)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) last(t *testing.T) []model.Project {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.saves)
	return s.saves[len(s.saves)-1]
}

func testConfig() *model.AppConfig {
	return &model.AppConfig{
		Storage: model.StorageConfig{Backend: model.BackendJSON},
		UI:      model.UIConfig{FlashSeconds: 2, StartView: "list"},
	}
}

func newTestModel(t *testing.T, cfg *model.AppConfig, projects []model.Project) (Model, *memStore) {
	t.Helper()
	s := &memStore{}
	return New(cfg, s, projects), s
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewPicksStartView(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())
	assert.Equal(t, ViewList, m.CurrentView())

	m, _ = newTestModel(t, testConfig(), nil)
	assert.Equal(t, ViewProjects, m.CurrentView())

	cfg := testConfig()
	cfg.UI.StartView = "projects"
	m, _ = newTestModel(t, cfg, testutil.SampleProjects())
	assert.Equal(t, ViewProjects, m.CurrentView())
}

func TestChangeSavesSnapshot(t *testing.T) {
	m, s := newTestModel(t, testConfig(), testutil.SampleProjects())

	var cmd tea.Cmd
	m.todoList, cmd = m.todoList.Add("call mom")
	require.NotNil(t, cmd)
	changed, ok := cmd().(ui.ChangedMsg)
	require.True(t, ok)

	m, cmd = update(t, m, changed)
	require.NotNil(t, cmd)
	result := cmd()
	m, _ = update(t, m, result)

	saved := s.last(t)
	require.Len(t, saved, 2)
	titles := make([]string, 0, len(saved[0].Todos))
	for _, td := range saved[0].Todos {
		titles = append(titles, td.Title)
	}
	assert.Equal(t, []string{"buy milk", "fix sink", "call mom"}, titles)

	// The snapshot is detached from the live state.
	m.State().Projects[0].Todos[0].Title = "changed"
	assert.Equal(t, "buy milk", saved[0].Todos[0].Title)
}

func TestSavesAreSerialized(t *testing.T) {
	m, s := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, first := update(t, m, ui.ChangedMsg{Reason: "one"})
	require.NotNil(t, first)

	m.State().AddTodo(1, "later")
	m, second := update(t, m, ui.ChangedMsg{Reason: "two"})
	assert.Nil(t, second, "a save is already in flight")

	m, followUp := update(t, m, first())
	require.NotNil(t, followUp)
	_, _ = update(t, m, followUp())

	require.Len(t, s.saves, 2)
	assert.Len(t, s.saves[0][0].Todos, 2)
	assert.Len(t, s.saves[1][0].Todos, 3)
}

func TestSaveFailureFlashes(t *testing.T) {
	m, s := newTestModel(t, testConfig(), testutil.SampleProjects())
	s.err = errors.New("disk full")

	m, cmd := update(t, m, ui.ChangedMsg{Reason: "add todo"})
	m, tick := update(t, m, cmd())
	assert.NotNil(t, tick)

	text, isErr := m.Flash()
	assert.Equal(t, "Save failed: disk full", text)
	assert.True(t, isErr)
}

func TestStaleFlashTimerDoesNotClearNewerMessage(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, ui.FlashMsg{Text: "first"})
	firstSeq := m.flash.seq
	m, _ = update(t, m, ui.FlashMsg{Text: "second", Error: true})

	m, _ = update(t, m, clearFlashMsg{seq: firstSeq})
	text, isErr := m.Flash()
	assert.Equal(t, "second", text)
	assert.True(t, isErr)

	m, _ = update(t, m, clearFlashMsg{seq: m.flash.seq})
	text, _ = m.Flash()
	assert.Empty(t, text)
}

func TestNavigate(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, ui.NavigateMsg{Route: ui.RouteDetails, TodoID: 1})
	assert.Equal(t, ViewDetails, m.CurrentView())
	assert.Equal(t, uint64(1), m.details.TodoID())

	m, _ = update(t, m, ui.NavigateMsg{Route: ui.RouteProjects})
	assert.Equal(t, ViewProjects, m.CurrentView())

	m, _ = update(t, m, ui.NavigateMsg{Route: ui.RouteList, TodoID: 2})
	assert.Equal(t, ViewList, m.CurrentView())
	sel, ok := m.todoList.Selected()
	require.True(t, ok)
	assert.Equal(t, uint64(2), sel.ID)
}

func TestNavigateToListWithoutProjectStaysOnProjects(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), nil)

	m, _ = update(t, m, ui.NavigateMsg{Route: ui.RouteList})
	assert.Equal(t, ViewProjects, m.CurrentView())
}

func TestGlobalKeys(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.CurrentView())

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestQuitKeyIsTextWhileEditing(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, runes("a"))
	require.True(t, m.editing())

	m, _ = update(t, m, runes("q"))
	assert.Equal(t, ViewList, m.CurrentView())
	assert.True(t, m.editing())

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestExportToConfiguredDir(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Dir = t.TempDir()
	m, _ := newTestModel(t, cfg, testutil.SampleProjects())

	m, cmd := update(t, m, ui.ExportMsg{})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	text, isErr := m.Flash()
	assert.False(t, isErr)
	require.True(t, strings.HasPrefix(text, "Exported to "), text)

	path := strings.TrimPrefix(text, "Exported to ")
	assert.Equal(t, cfg.Export.Dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Home_"))
	assert.FileExists(t, path)
}

func TestExportWithoutActiveProject(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), nil)

	m, cmd := update(t, m, ui.ExportMsg{})
	m, _ = update(t, m, cmd())

	text, isErr := m.Flash()
	assert.Equal(t, "Export failed: no active project selected", text)
	assert.True(t, isErr)
}

func TestExportPromptCanceled(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Prompt = true
	m, _ := newTestModel(t, cfg, testutil.SampleProjects())

	m, _ = update(t, m, ui.ExportMsg{})
	assert.Equal(t, ViewExport, m.CurrentView())
	assert.Equal(t, "Home.pdf", filepath.Base(*m.exportPath))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.CurrentView())
	m, _ = update(t, m, cmd())

	text, isErr := m.Flash()
	assert.Equal(t, "Export failed: save canceled", text)
	assert.True(t, isErr)
}

func TestCommandPalette(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.CurrentView())
	require.True(t, m.editing())

	m, _ = update(t, m, runes("q"))
	assert.Equal(t, ViewCommand, m.CurrentView(), "q is typed, not quit")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestExecuteCommands(t *testing.T) {
	m, _ := newTestModel(t, testConfig(), testutil.SampleProjects())

	m, _ = update(t, m, command.CommandMsg("filter completed"))
	assert.Equal(t, model.FilterCompleted, m.State().Filter)
	assert.Len(t, m.todoList.Items(), 1)

	m, _ = update(t, m, command.CommandMsg("project WORK"))
	require.NotNil(t, m.State().ActiveProject())
	assert.Equal(t, "Work", m.State().ActiveProject().Name)

	m, cmd := update(t, m, command.CommandMsg("add draft outline"))
	require.NotNil(t, cmd)
	assert.IsType(t, ui.ChangedMsg{}, cmd())
	assert.Len(t, m.State().ActiveProject().Todos, 2)

	m, _ = update(t, m, command.CommandMsg("project nowhere"))
	text, isErr := m.Flash()
	assert.Equal(t, `No project named "nowhere"`, text)
	assert.True(t, isErr)

	m, _ = update(t, m, command.CommandMsg("frobnicate"))
	text, _ = m.Flash()
	assert.Equal(t, `unknown command "frobnicate"`, text)

	_, cmd = update(t, m, command.CommandMsg("export"))
	require.NotNil(t, cmd)
	assert.Equal(t, ui.ExportMsg{}, cmd())
}

func TestSettingsSaved(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := testConfig()
	s := &memStore{}
	m := New(cfg, s, testutil.SampleProjects(), WithConfigPath(cfgPath))

	m, _ = update(t, m, runes("S"))
	assert.Equal(t, ViewSettings, m.CurrentView())
	require.True(t, m.editing())

	edited := *cfg
	edited.Export.Prompt = true
	edited.UI.FlashSeconds = 4
	m, cmd := update(t, m, configview.SavedMsg{Config: edited})
	assert.Equal(t, ViewList, m.CurrentView())
	assert.True(t, cfg.Export.Prompt, "applied to the live config")

	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	text, isErr := m.Flash()
	assert.Equal(t, "Settings saved", text)
	assert.False(t, isErr)

	loaded, err := model.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.True(t, loaded.Export.Prompt)
	assert.Equal(t, 4, loaded.UI.FlashSeconds)
}
