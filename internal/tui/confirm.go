package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// confirmation is a yes/no question guarding a destructive action.
type confirmation struct {
	form      *huh.Form
	confirmed *bool
	action    func() tea.Cmd
	returnTo  SessionState
}

func newConfirmationForm(title string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

// confirm opens a confirmation form and runs action once the user accepts.
func (m *Model) confirm(title string, action func() tea.Cmd) tea.Cmd {
	confirmed := false
	m.pending = &confirmation{
		form:      newConfirmationForm(title, &confirmed),
		confirmed: &confirmed,
		action:    action,
		returnTo:  m.state,
	}
	m.state = StateConfirm
	return m.pending.form.Init()
}

func (m Model) updateConfirmation(msg tea.Msg) (tea.Model, tea.Cmd) {
	c := m.pending
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeConfirmation()
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}
	cmds = append(cmds, cmd)

	switch c.form.State {
	case huh.StateCompleted:
		if *c.confirmed && c.action != nil {
			cmds = append(cmds, c.action())
		}
		m.closeConfirmation()
	case huh.StateAborted:
		m.closeConfirmation()
	}

	// Keep the countdown ticking behind the form
	m.countdown, cmd = m.countdown.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) closeConfirmation() {
	if m.pending != nil {
		m.state = m.pending.returnTo
	}
	m.pending = nil
}
