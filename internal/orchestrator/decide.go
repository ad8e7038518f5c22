package orchestrator

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/geofence"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/repository"
)

// State is the orchestrator-owned singleton state.
type State struct {
	Quick      models.QuickTimer
	MutedByApp bool
}

// Snapshot is everything a decision reads.
type Snapshot struct {
	State State
	// Ringer is the current ringer mode; RingerErr is set when it could not be read
	Ringer    models.RingerMode
	RingerErr error
	// Filter is the interruption filter before a quick timer starts
	Filter    models.InterruptionFilter
	FilterErr error
	Locations []models.SavedLocation
	Timers    []models.DailyTimer
	// Fired is the timer an AlarmFired event refers to, read from its own key
	Fired *models.DailyTimer
	Now   time.Time
}

// Policy holds the configurable decision variants.
type Policy struct {
	// RestoreWhenEmpty restores NORMAL on a location sample when no locations
	// are saved and the app muted the device. Off means hands-off.
	RestoreWhenEmpty bool
}

// Outcome summarises an evaluation.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoOp    Outcome = "noop"
	OutcomeFailed  Outcome = "failed"
)

// Decision is the pure result of an event: effects to apply in order and the
// state to commit once they succeed.
type Decision struct {
	Effects []Effect
	Next    State
	Change  repository.Change
	// Reason explains the decision for logs
	Reason string
	// Err rejects the event before any effect runs
	Err error
}

// NoOp reports whether the decision changes nothing.
func (d Decision) NoOp() bool {
	return d.Err == nil && len(d.Effects) == 0 && d.Change.Empty()
}

func noop(s State, reason string) Decision {
	return Decision{Next: s, Reason: reason}
}

func reject(s State, err error) Decision {
	return Decision{Next: s, Err: err, Reason: err.Error()}
}

// Decide maps (snapshot, event) to a decision without touching any port.
// An expired quick timer is handled as fired before any other event.
func Decide(snap Snapshot, ev Event, policy Policy) Decision {
	switch ev.(type) {
	case QuickTimerStarted, QuickTimerFired, QuickTimerCancelled:
		return decide(snap, ev, policy)
	}
	if !snap.State.Quick.Expired(snap.Now) {
		return decide(snap, ev, policy)
	}

	expired := quickFired(snap)
	next := snap
	next.State = expired.Next
	return merge(expired, decide(next, ev, policy))
}

func decide(snap Snapshot, ev Event, policy Policy) Decision {
	switch e := ev.(type) {
	case LocationSample:
		return locationSample(snap, e, policy)
	case AlarmFired:
		return alarmFired(snap, e)
	case QuickTimerStarted:
		return quickStarted(snap, e)
	case QuickTimerFired:
		return quickFired(snap)
	case QuickTimerCancelled:
		return quickCancelled(snap)
	case LocationAdded:
		return locationAdded(snap, e)
	case LocationDeleted:
		return locationDeleted(snap, e)
	case AllLocationsEmptied:
		return locationsEmptied(snap)
	case TimerSaved:
		return timerSaved(snap, e)
	case TimerDeleted:
		return timerDeleted(snap, e)
	case Boot:
		return boot(snap)
	}
	return reject(snap.State, apperrors.Invalidf("unknown event %T", ev))
}

// merge appends b after a. Fields b writes override a's.
func merge(a, b Decision) Decision {
	out := b
	out.Effects = append(append([]Effect(nil), a.Effects...), b.Effects...)
	if out.Change.Locations == nil {
		out.Change.Locations = a.Change.Locations
	}
	if out.Change.Timers == nil {
		out.Change.Timers = a.Change.Timers
	}
	if out.Change.Quick == nil {
		out.Change.Quick = a.Change.Quick
	}
	if out.Change.MutedByApp == nil {
		out.Change.MutedByApp = a.Change.MutedByApp
	}
	out.Reason = a.Reason + "; " + b.Reason
	return out
}

// withState records next as the committed state, writing only fields that changed.
func withState(d Decision, prev, next State) Decision {
	d.Next = next
	if next.Quick != prev.Quick {
		q := next.Quick
		d.Change.Quick = &q
	}
	if next.MutedByApp != prev.MutedByApp {
		m := next.MutedByApp
		d.Change.MutedByApp = &m
	}
	return d
}

func activeWindow(timers []models.DailyTimer, now time.Time, skip string) (models.DailyTimer, bool) {
	for _, t := range timers {
		if t.ID != skip && t.Contains(now) {
			return t, true
		}
	}
	return models.DailyTimer{}, false
}

func locationSample(snap Snapshot, e LocationSample, policy Policy) Decision {
	st := snap.State
	if st.Quick.Active {
		return noop(st, "quick timer owns the state")
	}
	if t, ok := activeWindow(snap.Timers, snap.Now, ""); ok {
		return noop(st, fmt.Sprintf("daily timer %s window is active", t.ID))
	}

	if len(snap.Locations) == 0 {
		if policy.RestoreWhenEmpty && st.MutedByApp {
			return restoreNormal(st, "no saved locations")
		}
		return noop(st, "no saved locations")
	}

	zone, inside := geofence.Membership(e.Sample, snap.Locations)
	if !inside {
		if st.MutedByApp {
			return restoreNormal(st, "left every zone")
		}
		return noop(st, "outside every zone and not muted by app")
	}

	if snap.RingerErr != nil {
		return reject(st, fmt.Errorf("failed to read ringer mode: %w", snap.RingerErr))
	}
	if snap.Ringer != models.RingerNormal {
		return noop(st, fmt.Sprintf("inside %s but ringer is %s", zone.Name, snap.Ringer))
	}
	if zone.TargetRingerMode == models.RingerNormal {
		return noop(st, fmt.Sprintf("inside %s which targets NORMAL", zone.Name))
	}

	next := st
	next.MutedByApp = true
	d := Decision{
		Effects: []Effect{setRinger(zone.TargetRingerMode)},
		Reason:  fmt.Sprintf("entered %s", zone.Name),
	}
	return withState(d, st, next)
}

// restoreNormal returns the ringer to NORMAL and hands control back to the user.
func restoreNormal(st State, reason string) Decision {
	next := st
	next.MutedByApp = false
	d := Decision{Reason: reason}
	if st.MutedByApp {
		d.Effects = []Effect{setRinger(models.RingerNormal)}
	}
	return withState(d, st, next)
}

func alarmFired(snap Snapshot, e AlarmFired) Decision {
	st := snap.State
	if snap.Fired == nil || snap.Fired.ID != e.TimerID {
		return noop(st, fmt.Sprintf("timer %s no longer exists", e.TimerID))
	}
	timer := *snap.Fired
	if !timer.HasDay(e.Day) {
		return noop(st, fmt.Sprintf("timer %s no longer runs on day %d", e.TimerID, e.Day))
	}

	filter := setFilter(e.Edge.TargetFilter())
	filter.ContinueOnError = true
	return Decision{
		Next:    st,
		Effects: []Effect{filter, {Kind: EffectRearm, Timer: timer, Day: e.Day}},
		Reason:  fmt.Sprintf("timer %s %s on day %d", timer.ID, e.Edge, e.Day),
	}
}

func quickStarted(snap Snapshot, e QuickTimerStarted) Decision {
	st := snap.State
	if e.Minutes <= 0 {
		return reject(st, apperrors.Invalidf("quick timer needs a positive number of minutes, got %d", e.Minutes))
	}
	end := snap.Now.Add(time.Duration(e.Minutes) * time.Minute)
	undo := Effect{Kind: EffectCancelQuick}
	if st.Quick.Active {
		undo = Effect{Kind: EffectArmQuick, At: st.Quick.EndTime}
	}

	filter := setFilter(models.FilterAlarmsOnly)
	if snap.FilterErr == nil && snap.Filter != "" {
		prev := setFilter(snap.Filter)
		filter.Undo = &prev
	}

	next := st
	next.Quick = models.QuickTimer{Active: true, EndTime: end}
	d := Decision{
		Effects: []Effect{
			{Kind: EffectArmQuick, At: end, Undo: &undo},
			filter,
		},
		Reason: fmt.Sprintf("quick timer for %d minutes", e.Minutes),
	}
	return withState(d, st, next)
}

func quickFired(snap Snapshot) Decision {
	st := snap.State
	if !st.Quick.Active {
		return noop(st, "no quick timer running")
	}
	if !st.Quick.Expired(snap.Now) {
		return noop(st, "quick timer has not ended yet")
	}

	next := st
	next.Quick = models.QuickTimer{}
	d := Decision{
		Effects: []Effect{
			setFilter(models.FilterAll),
			{Kind: EffectCancelQuick, ContinueOnError: true},
		},
		Reason: "quick timer ended",
	}
	return withState(d, st, next)
}

func quickCancelled(snap Snapshot) Decision {
	st := snap.State
	if !st.Quick.Active {
		return noop(st, "no quick timer running")
	}

	rearm := Effect{Kind: EffectArmQuick, At: st.Quick.EndTime}
	next := State{}
	d := Decision{
		Effects: []Effect{
			{Kind: EffectCancelQuick, Undo: &rearm},
			setFilter(models.FilterAll),
			setRinger(models.RingerNormal),
		},
		Reason: "quick timer cancelled",
	}
	return withState(d, st, next)
}

func findLocation(locs []models.SavedLocation, name string) int {
	for i, l := range locs {
		if l.Name == name {
			return i
		}
	}
	return -1
}

func locationAdded(snap Snapshot, e LocationAdded) Decision {
	st := snap.State
	loc := e.Location
	loc.Name = strings.TrimSpace(loc.Name)
	if err := loc.Validate(); err != nil {
		return reject(st, fmt.Errorf("%w: %v", apperrors.ErrInvalid, err))
	}
	if findLocation(snap.Locations, loc.Name) >= 0 {
		return reject(st, apperrors.Invalidf("location %q already exists", loc.Name))
	}

	locs := append(append([]models.SavedLocation(nil), snap.Locations...), loc)
	return Decision{
		Next:   st,
		Change: repository.Change{Locations: &locs},
		Reason: fmt.Sprintf("added location %s", loc.Name),
	}
}

func locationDeleted(snap Snapshot, e LocationDeleted) Decision {
	st := snap.State
	i := findLocation(snap.Locations, e.Name)
	if i < 0 {
		return reject(st, fmt.Errorf("location %q: %w", e.Name, apperrors.ErrNotFound))
	}

	locs := make([]models.SavedLocation, 0, len(snap.Locations)-1)
	locs = append(locs, snap.Locations[:i]...)
	locs = append(locs, snap.Locations[i+1:]...)

	d := restoreNormal(st, fmt.Sprintf("deleted location %s", e.Name))
	d.Change.Locations = &locs
	return d
}

func locationsEmptied(snap Snapshot) Decision {
	st := snap.State
	locs := []models.SavedLocation{}
	d := restoreNormal(st, fmt.Sprintf("removed %d locations", len(snap.Locations)))
	d.Change.Locations = &locs
	return d
}

func timerSaved(snap Snapshot, e TimerSaved) Decision {
	st := snap.State
	timer := e.Timer
	if err := timer.Validate(); err != nil {
		return reject(st, fmt.Errorf("%w: %v", apperrors.ErrInvalid, err))
	}

	timers := append([]models.DailyTimer(nil), snap.Timers...)
	var effects []Effect
	replaced := -1
	for i, t := range timers {
		if t.ID == timer.ID {
			replaced = i
			break
		}
	}

	if replaced >= 0 {
		old := timers[replaced]
		restore := Effect{Kind: EffectSchedule, Timer: old}
		effects = append(effects, Effect{Kind: EffectCancelTimer, Timer: old, Undo: &restore})
		timers[replaced] = timer
	} else {
		timers = append(timers, timer)
	}

	cancelNew := Effect{Kind: EffectCancelTimer, Timer: timer}
	effects = append(effects, Effect{Kind: EffectSchedule, Timer: timer, Undo: &cancelNew})

	if replaced >= 0 {
		old := snap.Timers[replaced]
		if old.Contains(snap.Now) && !timer.Contains(snap.Now) && windowReleased(snap, timer.ID) {
			release := setFilter(models.FilterAll)
			release.ContinueOnError = true
			effects = append(effects, release)
		}
	}

	verb := "added"
	if replaced >= 0 {
		verb = "replaced"
	}
	return Decision{
		Next:    st,
		Effects: effects,
		Change:  repository.Change{Timers: &timers},
		Reason:  fmt.Sprintf("%s timer %s", verb, timer.ID),
	}
}

// windowReleased reports whether nothing else holds the interruption filter once id's window goes away.
func windowReleased(snap Snapshot, id string) bool {
	if snap.State.Quick.Active {
		return false
	}
	_, other := activeWindow(snap.Timers, snap.Now, id)
	return !other
}

func timerDeleted(snap Snapshot, e TimerDeleted) Decision {
	st := snap.State
	i := -1
	for j, t := range snap.Timers {
		if t.ID == e.ID {
			i = j
			break
		}
	}
	if i < 0 {
		return reject(st, fmt.Errorf("timer %q: %w", e.ID, apperrors.ErrNotFound))
	}
	timer := snap.Timers[i]

	timers := make([]models.DailyTimer, 0, len(snap.Timers)-1)
	timers = append(timers, snap.Timers[:i]...)
	timers = append(timers, snap.Timers[i+1:]...)

	restore := Effect{Kind: EffectSchedule, Timer: timer}
	effects := []Effect{{Kind: EffectCancelTimer, Timer: timer, Undo: &restore}}
	if timer.Contains(snap.Now) && windowReleased(snap, timer.ID) {
		release := setFilter(models.FilterAll)
		release.ContinueOnError = true
		effects = append(effects, release)
	}

	return Decision{
		Next:    st,
		Effects: effects,
		Change:  repository.Change{Timers: &timers},
		Reason:  fmt.Sprintf("deleted timer %s", timer.ID),
	}
}

func boot(snap Snapshot) Decision {
	st := snap.State
	var effects []Effect
	for _, t := range snap.Timers {
		effects = append(effects, Effect{Kind: EffectSchedule, Timer: t, ContinueOnError: true})
	}
	if st.Quick.Active {
		effects = append(effects, Effect{Kind: EffectArmQuick, At: st.Quick.EndTime, ContinueOnError: true})
	}
	return Decision{
		Next:    st,
		Effects: effects,
		Reason:  fmt.Sprintf("replayed %d timers", len(snap.Timers)),
	}
}
