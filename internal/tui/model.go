// Package tui is the live dashboard behind "automute quick status --watch".
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/automute/internal/tui/components/alarms"
	"github.com/julianstephens/automute/internal/tui/components/countdown"
	"github.com/julianstephens/automute/internal/tui/components/zones"
)

type SessionState int

const (
	StateNow SessionState = iota
	StateAlarms
	StateZones
	StateConfirm

	tabCount = 3
)

// RefreshInterval is how often the dashboard re-reads status.
const RefreshInterval = 5 * time.Second

type refreshMsg time.Time

type statusMsg struct {
	status Status
	err    error
}

type actionDoneMsg struct {
	what string
	err  error
}

type Model struct {
	backend Backend
	state   SessionState
	keys    KeyMap
	help    help.Model

	countdown countdown.Model
	alarms    alarms.Model
	zones     zones.Model

	pending *confirmation

	status   Status
	err      error
	notice   string
	quitting bool
	width    int
	height   int
}

func NewModel(backend Backend) Model {
	return Model{
		backend:   backend,
		state:     StateNow,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		countdown: countdown.New(),
		alarms:    alarms.New(0, 0),
		zones:     zones.New(nil, 0, 0),
	}
}

// Run shows the dashboard until the user quits.
func Run(backend Backend) error {
	p := tea.NewProgram(NewModel(backend), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	switch m.state {
	case StateNow:
		if m.countdown.Active() {
			keys = append(keys, m.keys.CancelQuick)
		}
	case StateZones:
		keys = append(keys, m.keys.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{m.keys.CancelQuick, m.keys.Delete}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), scheduleRefresh())
}

func (m Model) load() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		st, err := backend.Status()
		return statusMsg{status: st, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m Model) cancelQuick() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return actionDoneMsg{what: "Quick timer cancelled", err: backend.CancelQuick()}
	}
}

func (m Model) deleteZone(name string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return actionDoneMsg{what: fmt.Sprintf("Location %q deleted", name), err: backend.DeleteLocation(name)}
	}
}

// apply pushes a fresh status into the components.
func (m *Model) apply(st Status) tea.Cmd {
	m.status = st
	m.countdown.SetDevice(countdown.Device{
		Ringer:      st.Ringer,
		Filter:      st.Filter,
		Err:         st.DeviceErr,
		MutedByApp:  st.MutedByApp,
		ActiveTimer: st.ActiveTimer,
	})
	m.alarms.SetAlarms(st.Pending, st.Now)
	return tea.Batch(
		m.countdown.SetQuick(st.Quick, st.Now),
		m.zones.SetLocations(st.Locations),
	)
}

func (m *Model) resize() {
	bodyHeight := m.height - 4
	if bodyHeight < 0 {
		bodyHeight = 0
	}
	m.countdown.SetSize(m.width, bodyHeight)
	m.alarms.SetSize(m.width-4, bodyHeight-2)
	m.zones.SetSize(m.width-4, bodyHeight-2)
}
