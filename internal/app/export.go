package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/report"
	"github.com/nhle/todo-projects/internal/ui"
)

// exportResultMsg is sent when an export finishes.
type exportResultMsg struct {
	path string
	err  error
}

// startExport exports the active project, first asking for a path when
// export.prompt is set.
func (m Model) startExport() (tea.Model, tea.Cmd) {
	p := m.state.ActiveProject()
	if !m.cfg.Export.Prompt || p == nil {
		return m, m.export(report.DownloadsPicker{Dir: m.cfg.Export.Dir})
	}

	*m.exportPath = report.SuggestedPath(m.cfg.Export.Dir, *p)
	m.exportForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Export "+p.Name+" as PDF").
				Description("Save to").
				Value(m.exportPath),
		),
	).WithWidth(ui.FormWidth(m.layout.Width)).WithHeight(ui.FormHeight(m.layout.Height))

	if m.currentView != ViewExport {
		m.previousView = m.currentView
	}
	m.currentView = ViewExport
	return m, m.exportForm.Init()
}

func (m Model) updateExportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.exportForm == nil {
		m.currentView = m.previousView
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.currentView = m.previousView
		return m, m.export(report.PromptPicker{Canceled: true})
	}

	mdl, cmd := m.exportForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.exportForm = f
	}
	switch m.exportForm.State {
	case huh.StateCompleted:
		m.currentView = m.previousView
		return m, m.export(report.PromptPicker{Path: *m.exportPath})
	case huh.StateAborted:
		m.currentView = m.previousView
		return m, m.export(report.PromptPicker{Canceled: true})
	}
	return m, cmd
}

// export renders a snapshot of the active project off the UI loop.
func (m Model) export(picker report.DestinationPicker) tea.Cmd {
	snapshot := model.CloneProjects(m.state.Projects)
	var active *uint64
	if m.state.ActiveProjectID != nil {
		id := *m.state.ActiveProjectID
		active = &id
	}
	exp := report.NewExporter(picker)

	return func() tea.Msg {
		path, err := exp.Export(context.Background(), snapshot, active)
		return exportResultMsg{path: path, err: err}
	}
}

func (m *Model) handleExportResult(msg exportResultMsg) tea.Cmd {
	if msg.err != nil {
		return m.setFlash("Export failed: "+msg.err.Error(), true)
	}
	return m.setFlash("Exported to "+msg.path, false)
}
