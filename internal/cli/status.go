package cli

import (
	"fmt"

	"github.com/julianstephens/automute/internal/orchestrator"
	"github.com/julianstephens/automute/internal/tui"
)

// Dashboard serves the TUI from the persisted store.
type Dashboard struct {
	ctx *Context
}

func NewDashboard(ctx *Context) *Dashboard {
	return &Dashboard{ctx: ctx}
}

// Status gathers orchestrator state, device state and pending alarms.
// Device read failures are reported in the status rather than failing it.
func (d *Dashboard) Status() (tui.Status, error) {
	return CollectStatus(d.ctx)
}

func (d *Dashboard) CancelQuick() error {
	_, err := d.ctx.Evaluate(orchestrator.QuickTimerCancelled{})
	return err
}

func (d *Dashboard) DeleteLocation(name string) error {
	_, err := d.ctx.Evaluate(orchestrator.LocationDeleted{Name: name})
	return err
}

func CollectStatus(ctx *Context) (tui.Status, error) {
	repo := ctx.Repo()
	st := tui.Status{Now: ctx.CurrentTime()}

	var err error
	if st.Quick, err = repo.QuickTimer(); err != nil {
		return st, fmt.Errorf("failed to read quick timer: %w", err)
	}
	if st.MutedByApp, err = repo.MutedByApp(); err != nil {
		return st, fmt.Errorf("failed to read mute attribution: %w", err)
	}
	if st.Locations, err = repo.Locations(); err != nil {
		return st, fmt.Errorf("failed to read locations: %w", err)
	}
	timers, err := repo.Timers()
	if err != nil {
		return st, fmt.Errorf("failed to read timers: %w", err)
	}
	for i := range timers {
		if timers[i].Contains(st.Now) {
			st.ActiveTimer = &timers[i]
			break
		}
	}
	if st.Pending, err = ctx.AlarmClock().Pending(); err != nil {
		return st, fmt.Errorf("failed to read pending alarms: %w", err)
	}

	st.Ringer, st.Filter, st.DeviceErr = ctx.Device().Snapshot()
	return st, nil
}
