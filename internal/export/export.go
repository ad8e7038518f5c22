// Package export renders daily timers as an iCalendar feed.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/julianstephens/automute/internal/constants"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
)

const (
	productID      = "-//automute//timers//EN"
	floatingLayout = "20060102T150405"
)

var ErrNoTimers = errors.New("no timers to export")

var rruleDays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Calendar builds one weekly recurring VEVENT per timer. The first
// occurrence is the timer's next window start after now. Times in the
// system-local zone are written as floating times.
func Calendar(timers []models.DailyTimer, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, t := range timers {
		ev, err := event(t, now)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal, nil
}

func event(t models.DailyTimer, now time.Time) (*ical.Event, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	start, err := firstStart(t, now)
	if err != nil {
		return nil, err
	}

	days := make([]rrule.Weekday, 0, len(t.DaysOfWeek))
	for _, d := range t.SortedDays() {
		days = append(days, rruleDays[d-1])
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, t.ID+"@"+constants.AppName)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetText(ical.PropSummary, fmt.Sprintf("Muted (%s-%s)", t.FormatStart(), t.FormatEnd()))
	ev.Props.SetText(ical.PropDescription, fmt.Sprintf("%s daily timer %s on %s", constants.AppName, t.ID, t.FormatDays()))
	ev.Props.SetText(ical.PropTransparency, "TRANSPARENT")
	setTime(ev, ical.PropDateTimeStart, start)
	setTime(ev, ical.PropDateTimeEnd, start.Add(t.Duration()))
	ev.Props.SetRecurrenceRule(&rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: days,
	})
	return ev, nil
}

// firstStart is the earliest upcoming window start across the timer's days.
func firstStart(t models.DailyTimer, now time.Time) (time.Time, error) {
	var first time.Time
	for _, day := range t.DaysOfWeek {
		at, err := scheduler.NextOccurrence(now, day, t.StartHour, t.StartMinute)
		if err != nil {
			return time.Time{}, err
		}
		if first.IsZero() || at.Before(first) {
			first = at
		}
	}
	return first, nil
}

func setTime(ev *ical.Event, name string, t time.Time) {
	if t.Location() != time.Local {
		ev.Props.SetDateTime(name, t)
		return
	}
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDateTime)
	prop.Value = t.Format(floatingLayout)
	ev.Props.Set(prop)
}

// Write encodes the timers as an .ics document. A calendar needs at least
// one component, so an empty timer list is an error.
func Write(w io.Writer, timers []models.DailyTimer, now time.Time) error {
	if len(timers) == 0 {
		return ErrNoTimers
	}
	cal, err := Calendar(timers, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
