package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todo-projects/internal/model"
	"github.com/nhle/todo-projects/internal/store"
)

const saveTimeout = 5 * time.Second

// saveResultMsg is sent after a snapshot has been written.
type saveResultMsg struct {
	reason string
	err    error
}

// clearFlashMsg expires the flash message with the same sequence number.
type clearFlashMsg struct {
	seq int
}

type flash struct {
	text    string
	isError bool
	seq     int
}

// saver serializes writes: while one save is in flight, later changes
// collapse into a single follow-up save of the then-current state.
type saver struct {
	inFlight bool
	pending  bool
	reason   string
}

// save persists a deep copy of the current projects.
func (m Model) save(reason string) tea.Cmd {
	if m.saver.inFlight {
		m.saver.pending = true
		m.saver.reason = reason
		return nil
	}
	m.saver.inFlight = true
	return saveCmd(m.store, model.CloneProjects(m.state.Projects), reason)
}

func saveCmd(s store.Store, snapshot []model.Project, reason string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return saveResultMsg{reason: reason, err: s.Save(ctx, snapshot)}
	}
}

func (m Model) handleSaveResult(msg saveResultMsg) (tea.Model, tea.Cmd) {
	m.saver.inFlight = false

	var cmds []tea.Cmd
	if msg.err != nil {
		log.Error("save failed", "reason", msg.reason, "err", msg.err)
		cmds = append(cmds, m.setFlash("Save failed: "+msg.err.Error(), true))
	} else {
		log.Debug("saved", "reason", msg.reason, "projects", len(m.state.Projects))
	}

	if m.saver.pending {
		m.saver.pending = false
		cmds = append(cmds, m.save(m.saver.reason))
	}
	return m, tea.Batch(cmds...)
}

// setFlash shows text in the status bar and schedules its removal. A
// newer flash outlives the timers of the ones it replaced.
func (m *Model) setFlash(text string, isError bool) tea.Cmd {
	m.flash.seq++
	m.flash.text = text
	m.flash.isError = isError

	seq := m.flash.seq
	d := time.Duration(m.cfg.UI.FlashSeconds) * time.Second
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}
