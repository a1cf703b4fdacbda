package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-24, 10), 60)
		m.table.SetColumns(scheduleColumns(msg.Width - 4))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Record):
			m.status = "Recording..."
			return m, m.record()
		case key.Matches(msg, m.keys.Reschedule):
			m.status = "Rescheduling..."
			return m, m.reschedule()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.loaded = true
			m.table.SetRows(scheduleRows(m.snap))
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = ""
			m.err = msg.err
		} else {
			m.status = msg.status
			m.err = nil
		}
		return m, m.load()

	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())
	}

	return m, nil
}
