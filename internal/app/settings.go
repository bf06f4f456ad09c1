package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todo-projects/internal/model"
)

// configSavedMsg is sent after the settings have been written.
type configSavedMsg struct {
	path string
	err  error
}

func (m *Model) openSettings() tea.Cmd {
	if m.currentView != ViewHelp && m.currentView != ViewSettings {
		m.previousView = m.currentView
	}
	m.currentView = ViewSettings

	var cmd tea.Cmd
	m.settings, cmd = m.settings.Open(*m.cfg)
	return cmd
}

// saveConfigCmd writes cfg to path. Without a path the change only
// lasts for this session.
func saveConfigCmd(path string, cfg model.AppConfig) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return configSavedMsg{}
		}
		return configSavedMsg{path: path, err: model.SaveConfig(path, &cfg)}
	}
}

func (m *Model) handleConfigSaved(msg configSavedMsg) tea.Cmd {
	switch {
	case msg.err != nil:
		log.Error("saving settings", "path", msg.path, "err", msg.err)
		return m.setFlash("Saving settings failed: "+msg.err.Error(), true)
	case msg.path == "":
		return m.setFlash("Settings applied for this session", false)
	default:
		log.Info("settings saved", "path", msg.path)
		return m.setFlash("Settings saved", false)
	}
}
