package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateNow:
		content = m.countdown.View()
	case StateAlarms:
		content = docStyle.Render(m.alarms.View())
	case StateZones:
		content = docStyle.Render(m.zones.View())
	case StateConfirm:
		content = m.viewConfirm()
	}

	parts := []string{m.viewTabs()}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Status unavailable: %v", m.err)))
	}
	parts = append(parts, content)
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Now", "Alarms", "Zones"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirm() string {
	if m.pending == nil {
		return ""
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		m.pending.form.View(),
	)
}
