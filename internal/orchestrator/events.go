package orchestrator

import (
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
)

// Event is a trigger fed to the orchestrator.
type Event interface {
	// Trigger names the event for logs and metrics
	Trigger() string
	// UserInitiated events report failures to the user; background ones only log
	UserInitiated() bool
}

// LocationSample is a new position fix.
type LocationSample struct {
	Sample models.LocationSample
}

// AlarmFired is a daily timer edge alarm going off.
type AlarmFired struct {
	TimerID string
	Day     int
	Edge    models.Edge
}

type QuickTimerStarted struct {
	Minutes int
}

type QuickTimerFired struct{}

type QuickTimerCancelled struct{}

type LocationAdded struct {
	Location models.SavedLocation
}

type LocationDeleted struct {
	Name string
}

type AllLocationsEmptied struct{}

// TimerSaved adds a timer or replaces the timer with the same id.
type TimerSaved struct {
	Timer models.DailyTimer
}

type TimerDeleted struct {
	ID string
}

// Boot replays persisted state into the scheduler after a restart.
type Boot struct{}

func (LocationSample) Trigger() string      { return "location_sample" }
func (AlarmFired) Trigger() string          { return "alarm_fired" }
func (QuickTimerStarted) Trigger() string   { return "quick_timer_started" }
func (QuickTimerFired) Trigger() string     { return "quick_timer_fired" }
func (QuickTimerCancelled) Trigger() string { return "quick_timer_cancelled" }
func (LocationAdded) Trigger() string       { return "location_added" }
func (LocationDeleted) Trigger() string     { return "location_deleted" }
func (AllLocationsEmptied) Trigger() string { return "all_locations_emptied" }
func (TimerSaved) Trigger() string          { return "timer_saved" }
func (TimerDeleted) Trigger() string        { return "timer_deleted" }
func (Boot) Trigger() string                { return "boot" }

func (LocationSample) UserInitiated() bool      { return false }
func (AlarmFired) UserInitiated() bool          { return false }
func (QuickTimerStarted) UserInitiated() bool   { return true }
func (QuickTimerFired) UserInitiated() bool     { return false }
func (QuickTimerCancelled) UserInitiated() bool { return true }
func (LocationAdded) UserInitiated() bool       { return true }
func (LocationDeleted) UserInitiated() bool     { return true }
func (AllLocationsEmptied) UserInitiated() bool { return true }
func (TimerSaved) UserInitiated() bool          { return true }
func (TimerDeleted) UserInitiated() bool        { return true }
func (Boot) UserInitiated() bool                { return false }

// EventForAlarm maps a delivered alarm to the event it stands for.
func EventForAlarm(a scheduler.Alarm) Event {
	if a.Payload.Kind == scheduler.KindQuick {
		return QuickTimerFired{}
	}
	return AlarmFired{TimerID: a.Payload.TimerID, Day: a.Payload.Day, Edge: a.Payload.Edge}
}
