// Package validation reports configuration problems in saved locations and
// daily timers that are legal individually but surprising together.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/automute/internal/geofence"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateLocationName ConflictType = "duplicate_location_name"
	ConflictOverlappingGeofences  ConflictType = "overlapping_geofences"
	ConflictOverlappingWindows    ConflictType = "overlapping_windows"
	ConflictIdentifierCollision   ConflictType = "identifier_collision"
	ConflictInvalidTimer          ConflictType = "invalid_timer"
	ConflictInvalidLocation       ConflictType = "invalid_location"
)

// Conflict is one detected problem
type Conflict struct {
	Type        ConflictType
	Description string
	// Items names the locations or timer ids involved
	Items []string
}

// Result contains all detected conflicts
type Result struct {
	Conflicts []Conflict
}

func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (r *Result) add(t ConflictType, items []string, format string, args ...any) {
	r.Conflicts = append(r.Conflicts, Conflict{Type: t, Description: fmt.Sprintf(format, args...), Items: items})
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks locations and timers together.
func (v *Validator) Validate(locations []models.SavedLocation, timers []models.DailyTimer) Result {
	res := v.ValidateLocations(locations)
	res.Conflicts = append(res.Conflicts, v.ValidateTimers(timers).Conflicts...)
	return res
}

// ValidateLocations reports invalid locations, repeated names and
// geofences that overlap. With first-match membership the later of two
// overlapping locations never wins inside the shared area.
func (v *Validator) ValidateLocations(locations []models.SavedLocation) Result {
	res := Result{Conflicts: []Conflict{}}

	seen := make(map[string]int)
	for i, loc := range locations {
		if err := loc.Validate(); err != nil {
			res.add(ConflictInvalidLocation, []string{loc.Name}, "Location %q is invalid: %v", loc.Name, err)
		}
		if first, ok := seen[loc.Name]; ok {
			res.add(ConflictDuplicateLocationName, []string{loc.Name},
				"Duplicate location name %q (positions %d and %d)", loc.Name, first+1, i+1)
			continue
		}
		seen[loc.Name] = i
	}

	for i := 0; i < len(locations); i++ {
		for j := i + 1; j < len(locations); j++ {
			a, b := locations[i], locations[j]
			if !geofence.Overlaps(a, b) {
				continue
			}
			dist := geofence.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
			res.add(ConflictOverlappingGeofences, []string{a.Name, b.Name},
				"Locations %q and %q overlap (%.0fm apart, radii %.0fm and %.0fm); %q wins in the shared area",
				a.Name, b.Name, dist, a.Radius, b.Radius, a.Name)
		}
	}
	return res
}

// ValidateTimers reports invalid timers, windows that overlap on the same
// day and alarm identifier collisions between timers.
func (v *Validator) ValidateTimers(timers []models.DailyTimer) Result {
	res := Result{Conflicts: []Conflict{}}

	var valid []models.DailyTimer
	for _, t := range timers {
		if err := t.Validate(); err != nil {
			res.add(ConflictInvalidTimer, []string{t.ID}, "Timer %s is invalid: %v", t.ID, err)
			continue
		}
		valid = append(valid, t)
	}

	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]
			days := overlapDays(a, b)
			if len(days) == 0 {
				continue
			}
			res.add(ConflictOverlappingWindows, []string{a.ID, b.ID},
				"Timers %s (%s-%s) and %s (%s-%s) overlap on %s",
				a.ID, a.FormatStart(), a.FormatEnd(), b.ID, b.FormatStart(), b.FormatEnd(), formatDays(days))
		}
	}

	for _, desc := range scheduler.Collisions(valid) {
		res.add(ConflictIdentifierCollision, nil, "Alarm identifier collision: %s", desc)
	}
	return res
}

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay
)

type span struct{ start, end int }

// weekSpans places a timer's windows on a week of minutes starting Sunday
// 00:00. A Saturday overnight window wraps into Sunday morning.
func weekSpans(t models.DailyTimer) []span {
	length := int(t.Duration().Minutes())
	var spans []span
	for _, day := range t.DaysOfWeek {
		start := (day-1)*minutesPerDay + t.StartMinutes()
		end := start + length
		if end > minutesPerWeek {
			spans = append(spans, span{start, minutesPerWeek}, span{0, end - minutesPerWeek})
			continue
		}
		spans = append(spans, span{start, end})
	}
	return spans
}

// overlapDays returns the days (1..7) on which the two timers are both active.
func overlapDays(a, b models.DailyTimer) []int {
	hit := make(map[int]bool)
	for _, x := range weekSpans(a) {
		for _, y := range weekSpans(b) {
			lo, hi := max(x.start, y.start), min(x.end, y.end)
			if lo < hi {
				hit[lo/minutesPerDay+1] = true
			}
		}
	}
	days := make([]int, 0, len(hit))
	for d := range hit {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func formatDays(days []int) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = models.Weekday(d).String()
	}
	return strings.Join(names, ", ")
}
