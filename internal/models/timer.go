package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/automute/internal/constants"
)

// Days of week as stored on a timer: 1 is Sunday, 7 is Saturday.
const (
	Sunday   = 1
	Saturday = 7
)

const minutesPerDay = 24 * 60

// DailyTimer is a recurring weekly mute window. It is replaced as a whole, never edited in place.
type DailyTimer struct {
	ID          string `json:"id" validate:"required"`
	StartHour   int    `json:"startHour" validate:"gte=0,lte=23"`
	StartMinute int    `json:"startMinute" validate:"gte=0,lte=59"`
	EndHour     int    `json:"endHour" validate:"gte=0,lte=23"`
	EndMinute   int    `json:"endMinute" validate:"gte=0,lte=59"`
	DaysOfWeek  []int  `json:"daysOfWeek" validate:"required,min=1,dive,gte=1,lte=7"`
}

// Validate checks field ranges, rejects empty windows and repeated days
func (d *DailyTimer) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid timer %q: %w", d.ID, err)
	}
	if d.StartMinutes() == d.EndMinutes() {
		return fmt.Errorf("invalid timer %q: start and end are both %s", d.ID, d.FormatStart())
	}
	seen := make(map[int]bool, len(d.DaysOfWeek))
	for _, day := range d.DaysOfWeek {
		if seen[day] {
			return fmt.Errorf("invalid timer %q: day %d listed twice", d.ID, day)
		}
		seen[day] = true
	}
	return nil
}

// StartMinutes returns the window start as minutes from midnight
func (d *DailyTimer) StartMinutes() int { return d.StartHour*60 + d.StartMinute }

// EndMinutes returns the window end as minutes from midnight
func (d *DailyTimer) EndMinutes() int { return d.EndHour*60 + d.EndMinute }

// Overnight reports whether the window wraps past midnight.
func (d *DailyTimer) Overnight() bool { return d.EndMinutes() < d.StartMinutes() }

// HasDay reports whether day (1..7) is one of the timer's days
func (d *DailyTimer) HasDay(day int) bool {
	for _, dd := range d.DaysOfWeek {
		if dd == day {
			return true
		}
	}
	return false
}

// Contains reports whether t falls inside the window [start, end).
// An overnight window belongs to its start day and runs into the next morning.
func (d *DailyTimer) Contains(t time.Time) bool {
	day := DayOfWeek(t)
	m := t.Hour()*60 + t.Minute()
	start, end := d.StartMinutes(), d.EndMinutes()

	if !d.Overnight() {
		return d.HasDay(day) && m >= start && m < end
	}
	if d.HasDay(day) && m >= start {
		return true
	}
	return d.HasDay(PreviousDay(day)) && m < end
}

// Duration is the length of the window.
func (d *DailyTimer) Duration() time.Duration {
	mins := d.EndMinutes() - d.StartMinutes()
	if mins < 0 {
		mins += minutesPerDay
	}
	return time.Duration(mins) * time.Minute
}

// SortedDays returns the days in ascending order
func (d *DailyTimer) SortedDays() []int {
	days := append([]int(nil), d.DaysOfWeek...)
	sort.Ints(days)
	return days
}

func (d *DailyTimer) FormatStart() string {
	return fmt.Sprintf("%02d:%02d", d.StartHour, d.StartMinute)
}

func (d *DailyTimer) FormatEnd() string {
	return fmt.Sprintf("%02d:%02d", d.EndHour, d.EndMinute)
}

// FormatDays renders the days as short weekday names
func (d *DailyTimer) FormatDays() string {
	var names []string
	for _, day := range d.SortedDays() {
		names = append(names, Weekday(day).String()[:3])
	}
	return strings.Join(names, ",")
}

// DayOfWeek maps a time to 1 (Sunday) .. 7 (Saturday).
func DayOfWeek(t time.Time) int {
	return int(t.Weekday()) + 1
}

// Weekday maps 1..7 back to time.Weekday
func Weekday(day int) time.Weekday {
	return time.Weekday((day - 1) % 7)
}

// PreviousDay returns the day before day, wrapping Sunday to Saturday
func PreviousDay(day int) int {
	if day == Sunday {
		return Saturday
	}
	return day - 1
}

// NextDay returns the day after day, wrapping Saturday to Sunday
func NextDay(day int) int {
	if day == Saturday {
		return Sunday
	}
	return day + 1
}

// Edge is the boundary of a daily window an alarm fires on.
type Edge string

const (
	EdgeStart Edge = "START"
	EdgeEnd   Edge = "END"
)

// ActionName is the stable name hashed into alarm identifiers.
func (e Edge) ActionName() string {
	if e == EdgeStart {
		return constants.ActionSetSilent
	}
	return constants.ActionSetNormal
}

// TargetFilter is the interruption filter an edge applies.
func (e Edge) TargetFilter() InterruptionFilter {
	if e == EdgeStart {
		return FilterNone
	}
	return FilterAll
}

// QuickTimer is the singleton one-shot countdown.
type QuickTimer struct {
	Active  bool      `json:"active"`
	EndTime time.Time `json:"endTime"`
}

// Expired reports whether an active timer has reached its end
func (q QuickTimer) Expired(now time.Time) bool {
	return q.Active && !now.Before(q.EndTime)
}

// Remaining is the time left, zero once expired or inactive
func (q QuickTimer) Remaining(now time.Time) time.Duration {
	if !q.Active || !now.Before(q.EndTime) {
		return 0
	}
	return q.EndTime.Sub(now)
}
