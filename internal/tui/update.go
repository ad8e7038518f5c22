package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/automute/internal/tui/components/zones"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case statusMsg:
		m.err = msg.err
		var cmd tea.Cmd
		if msg.err == nil {
			cmd = m.apply(msg.status)
		}
		return m, cmd

	case refreshMsg:
		return m, tea.Batch(m.load(), scheduleRefresh())

	case timer.TimeoutMsg:
		var cmd tea.Cmd
		m.countdown, cmd = m.countdown.Update(msg)
		return m, tea.Batch(cmd, m.load())

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = errorStyle.Render(msg.err.Error())
		} else {
			m.notice = msg.what
		}
		return m, m.load()

	case zones.DeleteLocationMsg:
		name := msg.Name
		cmd := m.confirm(fmt.Sprintf("Delete location %q?", name), func() tea.Cmd { return m.deleteZone(name) })
		return m, cmd
	}

	if m.state == StateConfirm && m.pending != nil {
		return m.updateConfirmation(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case m.state == StateNow && key.Matches(msg, m.keys.CancelQuick):
			if m.countdown.Active() {
				return m, m.confirm("Cancel the quick timer?", m.cancelQuick)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateAlarms:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.alarms, cmd = m.alarms.Update(msg)
			return m, cmd
		}
	case StateZones:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.zones, cmd = m.zones.Update(msg)
			return m, cmd
		}
	}

	// Countdown ticks arrive whichever tab is showing
	m.countdown, cmd = m.countdown.Update(msg)
	return m, cmd
}
