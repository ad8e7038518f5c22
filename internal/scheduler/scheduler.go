// Package scheduler arms the weekly START/END alarms of daily timers and the
// one-shot quick timer alarm through a Port.
package scheduler

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/models"
)

// PayloadKind tells what an alarm is for.
type PayloadKind string

const (
	KindDaily PayloadKind = "daily"
	KindQuick PayloadKind = "quick"
)

// Payload is carried by an alarm and handed back when it fires.
type Payload struct {
	Kind    PayloadKind `json:"kind"`
	TimerID string      `json:"timerId,omitempty"`
	Day     int         `json:"day,omitempty"`
	Edge    models.Edge `json:"edge,omitempty"`
}

// Alarm is an armed wake-up.
type Alarm struct {
	ID      int32
	At      time.Time
	Payload Payload
}

// Port schedules callbacks at absolute times. Arming an id again replaces the previous alarm.
type Port interface {
	Arm(id int32, at time.Time, payload Payload) error
	Cancel(id int32) error
}

// PendingLister is implemented by ports that can enumerate armed alarms.
// When available it is used to detect identifier collisions.
type PendingLister interface {
	Pending() ([]Alarm, error)
}

var rruleDays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

type Scheduler struct {
	port Port
}

func New(port Port) *Scheduler {
	return &Scheduler{port: port}
}

// AlarmID derives the identifier of a daily timer edge. Arithmetic wraps at 32 bits.
func AlarmID(timerID string, day int, edge models.Edge) int32 {
	return int32(hash32(timerID) + uint32(day) + hash32(edge.ActionName()))
}

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// NextOccurrence returns the first day@hour:minute:00 strictly after now, in now's location.
func NextOccurrence(now time.Time, day, hour, minute int) (time.Time, error) {
	if day < models.Sunday || day > models.Saturday {
		return time.Time{}, fmt.Errorf("invalid day of week %d", day)
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   midnight,
		Byweekday: []rrule.Weekday{rruleDays[day-1]},
		Byhour:    []int{hour},
		Byminute:  []int{minute},
		Bysecond:  []int{0},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build weekly rule: %w", err)
	}
	next := rule.After(now, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no occurrence of day %d at %02d:%02d after %s", day, hour, minute, now)
	}
	return next, nil
}

// Plan computes the alarms Schedule would arm for timer, START before END for each day.
func Plan(timer models.DailyTimer, now time.Time) ([]Alarm, error) {
	var alarms []Alarm
	for _, day := range timer.SortedDays() {
		pair, err := planDay(timer, day, now)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, pair...)
	}
	return alarms, nil
}

// planDay arms the edges of day's window. An overnight window keeps day in its
// END identifier but fires on the following morning.
func planDay(timer models.DailyTimer, day int, now time.Time) ([]Alarm, error) {
	start, err := NextOccurrence(now, day, timer.StartHour, timer.StartMinute)
	if err != nil {
		return nil, err
	}
	endDay := day
	if timer.Overnight() {
		endDay = models.NextDay(day)
	}
	end, err := NextOccurrence(now, endDay, timer.EndHour, timer.EndMinute)
	if err != nil {
		return nil, err
	}
	return []Alarm{
		{ID: AlarmID(timer.ID, day, models.EdgeStart), At: start, Payload: Payload{Kind: KindDaily, TimerID: timer.ID, Day: day, Edge: models.EdgeStart}},
		{ID: AlarmID(timer.ID, day, models.EdgeEnd), At: end, Payload: Payload{Kind: KindDaily, TimerID: timer.ID, Day: day, Edge: models.EdgeEnd}},
	}, nil
}

// Schedule arms START and END for every day of timer.
func (s *Scheduler) Schedule(timer models.DailyTimer, now time.Time) error {
	alarms, err := Plan(timer, now)
	if err != nil {
		return err
	}
	return s.arm(alarms)
}

// Rearm arms next week's START and END for one day after that day's alarm fired.
func (s *Scheduler) Rearm(timer models.DailyTimer, day int, now time.Time) error {
	alarms, err := planDay(timer, day, now)
	if err != nil {
		return err
	}
	return s.arm(alarms)
}

// Cancel removes every alarm of timer. Cancelling an unarmed alarm is a no-op.
func (s *Scheduler) Cancel(timer models.DailyTimer) error {
	var errs []error
	for _, day := range timer.DaysOfWeek {
		for _, edge := range []models.Edge{models.EdgeStart, models.EdgeEnd} {
			if err := s.port.Cancel(AlarmID(timer.ID, day, edge)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ArmQuick arms the quick timer alarm, replacing any earlier one.
func (s *Scheduler) ArmQuick(end time.Time) error {
	alarms := []Alarm{{ID: constants.QuickTimerAlarmID, At: end, Payload: Payload{Kind: KindQuick}}}
	return s.arm(alarms)
}

// CancelQuick removes the quick timer alarm.
func (s *Scheduler) CancelQuick() error {
	return s.port.Cancel(constants.QuickTimerAlarmID)
}

// Pending lists armed alarms sorted by fire time, or nil when the port cannot enumerate them.
func (s *Scheduler) Pending() ([]Alarm, error) {
	lister, ok := s.port.(PendingLister)
	if !ok {
		return nil, nil
	}
	alarms, err := lister.Pending()
	if err != nil {
		return nil, err
	}
	sort.Slice(alarms, func(i, j int) bool { return alarms[i].At.Before(alarms[j].At) })
	return alarms, nil
}

func (s *Scheduler) arm(alarms []Alarm) error {
	if err := s.checkCollisions(alarms); err != nil {
		return err
	}
	for _, a := range alarms {
		if err := s.port.Arm(a.ID, a.At, a.Payload); err != nil {
			return fmt.Errorf("failed to arm alarm %d: %w", a.ID, err)
		}
		logger.Debug("Alarm armed", "id", a.ID, "at", a.At, "kind", a.Payload.Kind, "timer", a.Payload.TimerID, "day", a.Payload.Day, "edge", a.Payload.Edge)
	}
	return nil
}

func (s *Scheduler) checkCollisions(alarms []Alarm) error {
	held := make(map[int32]Payload)
	pending, err := s.Pending()
	if err != nil {
		return fmt.Errorf("failed to list pending alarms: %w", err)
	}
	for _, p := range pending {
		held[p.ID] = p.Payload
	}

	planned := make(map[int32]Payload, len(alarms))
	for _, a := range alarms {
		if other, ok := planned[a.ID]; ok && other != a.Payload {
			return collision(a, other)
		}
		planned[a.ID] = a.Payload
		if other, ok := held[a.ID]; ok && other != a.Payload {
			return collision(a, other)
		}
	}
	return nil
}

func collision(a Alarm, other Payload) error {
	return fmt.Errorf("%w: id %d for %s is held by %s", apperrors.ErrIdentifierCollision, a.ID, describe(a.Payload), describe(other))
}

func describe(p Payload) string {
	if p.Kind == KindQuick {
		return "quick timer"
	}
	return fmt.Sprintf("timer %q day %d %s", p.TimerID, p.Day, p.Edge)
}

// Collisions reports every pair of timers whose alarm identifiers clash.
func Collisions(timers []models.DailyTimer) []string {
	owners := map[int32]Payload{
		constants.QuickTimerAlarmID: {Kind: KindQuick},
	}
	var out []string
	for _, t := range timers {
		for _, day := range t.SortedDays() {
			for _, edge := range []models.Edge{models.EdgeStart, models.EdgeEnd} {
				id := AlarmID(t.ID, day, edge)
				p := Payload{Kind: KindDaily, TimerID: t.ID, Day: day, Edge: edge}
				if other, ok := owners[id]; ok && other != p {
					out = append(out, fmt.Sprintf("id %d: %s and %s", id, describe(other), describe(p)))
					continue
				}
				owners[id] = p
			}
		}
	}
	return out
}
