// Package countdown shows the quick timer and the device state.
package countdown

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/automute/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(1, 0).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(30).
			Align(lipgloss.Center)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Device is the ringer state shown under the countdown.
type Device struct {
	Ringer      models.RingerMode
	Filter      models.InterruptionFilter
	Err         error
	MutedByApp  bool
	ActiveTimer *models.DailyTimer
}

type Model struct {
	timer  timer.Model
	end    time.Time
	active bool
	device Device
	width  int
	height int
}

func New() Model {
	return Model{}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetDevice(d Device) {
	m.device = d
}

// SetQuick starts a fresh countdown when the quick timer's end changes.
func (m *Model) SetQuick(q models.QuickTimer, now time.Time) tea.Cmd {
	if !q.Active || q.Expired(now) {
		m.active = false
		m.end = time.Time{}
		return nil
	}
	if m.active && q.EndTime.Equal(m.end) {
		return nil
	}
	m.active = true
	m.end = q.EndTime
	m.timer = timer.NewWithInterval(q.Remaining(now).Round(time.Second), time.Second)
	return m.timer.Init()
}

// Active reports whether a countdown is running.
func (m Model) Active() bool { return m.active }

func (m Model) Init() tea.Cmd {
	if !m.active {
		return nil
	}
	return m.timer.Init()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	var cmd tea.Cmd
	m.timer, cmd = m.timer.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var clock string
	if m.active {
		clock = lipgloss.JoinVertical(lipgloss.Center,
			clockStyle.Render(m.timer.View()),
			dimStyle.Render("until "+m.end.Format("15:04")),
		)
	} else {
		clock = clockStyle.Render("No quick timer")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Quick timer"),
		clock,
		"",
		m.deviceView(),
	)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) deviceView() string {
	d := m.device
	if d.Err != nil {
		return dimStyle.Render(fmt.Sprintf("Device unavailable: %v", d.Err))
	}
	lines := []string{
		fmt.Sprintf("Ringer: %s   Filter: %s", d.Ringer, d.Filter),
	}
	if d.MutedByApp {
		lines = append(lines, "Muted by a saved location")
	}
	if d.ActiveTimer != nil {
		lines = append(lines, fmt.Sprintf("Daily timer %s-%s active", d.ActiveTimer.FormatStart(), d.ActiveTimer.FormatEnd()))
	}
	return dimStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}
