// Package alarms lists armed alarms in a scrollable viewport.
package alarms

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	edgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(8)

	relStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	pending  []scheduler.Alarm
	now      time.Time
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetAlarms(pending []scheduler.Alarm, now time.Time) {
	m.pending = pending
	m.now = now
	m.Render()
}

func (m *Model) Render() {
	if len(m.pending) == 0 {
		m.viewport.SetContent("No alarms armed.")
		return
	}

	var b strings.Builder
	for _, a := range m.pending {
		fmt.Fprintf(&b, "%s %s %s %s\n",
			timeStyle.Render(a.At.Format("Mon Jan 2 15:04")),
			edgeStyle.Render(Label(a.Payload)),
			Owner(a.Payload),
			relStyle.Render(humanize.RelTime(a.At, m.now, "ago", "from now")),
		)
	}
	m.viewport.SetContent(b.String())
}

// Label names what an alarm does.
func Label(p scheduler.Payload) string {
	if p.Kind == scheduler.KindQuick {
		return "UNMUTE"
	}
	if p.Edge == models.EdgeStart {
		return "MUTE"
	}
	return "UNMUTE"
}

// Owner names what armed an alarm.
func Owner(p scheduler.Payload) string {
	if p.Kind == scheduler.KindQuick {
		return "quick timer"
	}
	return fmt.Sprintf("timer %s (%s)", p.TimerID, models.Weekday(p.Day).String()[:3])
}
