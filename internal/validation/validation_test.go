package validation

import (
	"strings"
	"testing"

	"github.com/julianstephens/automute/internal/models"
)

func office() models.SavedLocation {
	return models.SavedLocation{Name: "Office", Latitude: 40.7128, Longitude: -74.0060, Radius: 150, TargetRingerMode: models.RingerSilent}
}

func countType(res Result, typ ConflictType) int {
	n := 0
	for _, c := range res.Conflicts {
		if c.Type == typ {
			n++
		}
	}
	return n
}

func TestValidateLocations(t *testing.T) {
	gym := models.SavedLocation{Name: "Gym", Latitude: 40.80, Longitude: -74.0060, Radius: 100, TargetRingerMode: models.RingerVibrate}
	// About 111m north of the office, inside both radii
	cafe := models.SavedLocation{Name: "Cafe", Latitude: 40.7138, Longitude: -74.0060, Radius: 50, TargetRingerMode: models.RingerVibrate}

	tests := []struct {
		name      string
		locations []models.SavedLocation
		want      map[ConflictType]int
	}{
		{name: "clean", locations: []models.SavedLocation{office(), gym}, want: map[ConflictType]int{}},
		{name: "duplicate name", locations: []models.SavedLocation{office(), gym, office()}, want: map[ConflictType]int{
			ConflictDuplicateLocationName: 1,
			ConflictOverlappingGeofences:  1,
		}},
		{name: "overlap", locations: []models.SavedLocation{office(), cafe}, want: map[ConflictType]int{ConflictOverlappingGeofences: 1}},
		{name: "invalid", locations: []models.SavedLocation{{Name: "Bad", Latitude: 95, Radius: 10, TargetRingerMode: models.RingerSilent}}, want: map[ConflictType]int{ConflictInvalidLocation: 1}},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateLocations(tt.locations)
			total := 0
			for typ, n := range tt.want {
				total += n
				if got := countType(res, typ); got != n {
					t.Errorf("expected %d %s conflicts, got %d: %v", n, typ, got, res.Conflicts)
				}
			}
			if len(res.Conflicts) != total {
				t.Errorf("expected %d conflicts, got %v", total, res.Conflicts)
			}
		})
	}
}

func TestOverlapReportNamesWinner(t *testing.T) {
	cafe := models.SavedLocation{Name: "Cafe", Latitude: 40.7138, Longitude: -74.0060, Radius: 50, TargetRingerMode: models.RingerVibrate}
	res := New().ValidateLocations([]models.SavedLocation{office(), cafe})
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", res.Conflicts)
	}
	if !strings.Contains(res.Conflicts[0].Description, `"Office" wins`) {
		t.Errorf("expected the earlier location to win, got %q", res.Conflicts[0].Description)
	}
}

func TestValidateTimers(t *testing.T) {
	work := models.DailyTimer{ID: "work", StartHour: 9, EndHour: 17, DaysOfWeek: []int{2, 3, 4, 5, 6}}
	lunch := models.DailyTimer{ID: "lunch", StartHour: 12, EndHour: 13, DaysOfWeek: []int{4}}
	evening := models.DailyTimer{ID: "evening", StartHour: 17, EndHour: 18, DaysOfWeek: []int{2}}
	night := models.DailyTimer{ID: "night", StartHour: 22, EndHour: 7, DaysOfWeek: []int{7}}
	sundayMorning := models.DailyTimer{ID: "sunday", StartHour: 6, EndHour: 8, DaysOfWeek: []int{1}}

	tests := []struct {
		name     string
		timers   []models.DailyTimer
		overlaps int
		days     string
	}{
		{name: "touching windows do not overlap", timers: []models.DailyTimer{work, evening}},
		{name: "same day overlap", timers: []models.DailyTimer{work, lunch}, overlaps: 1, days: "Wednesday"},
		{name: "different days", timers: []models.DailyTimer{lunch, evening}},
		{name: "saturday overnight wraps into sunday", timers: []models.DailyTimer{night, sundayMorning}, overlaps: 1, days: "Sunday"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateTimers(tt.timers)
			if got := countType(res, ConflictOverlappingWindows); got != tt.overlaps {
				t.Fatalf("expected %d overlaps, got %v", tt.overlaps, res.Conflicts)
			}
			if tt.days != "" && !strings.HasSuffix(res.Conflicts[0].Description, tt.days) {
				t.Errorf("expected overlap on %s, got %q", tt.days, res.Conflicts[0].Description)
			}
		})
	}
}

func TestValidateTimersInvalid(t *testing.T) {
	res := New().ValidateTimers([]models.DailyTimer{
		{ID: "empty", StartHour: 9, EndHour: 9, DaysOfWeek: []int{2}},
		{ID: "nodays", StartHour: 9, EndHour: 10},
	})
	if got := countType(res, ConflictInvalidTimer); got != 2 {
		t.Errorf("expected 2 invalid timers, got %v", res.Conflicts)
	}
}

func TestFormatReport(t *testing.T) {
	var res Result
	if res.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected empty report %q", res.FormatReport())
	}
	res = New().Validate([]models.SavedLocation{office(), office()}, nil)
	report := res.FormatReport()
	if !strings.HasPrefix(report, "Conflicts detected:\n- ") {
		t.Errorf("unexpected report %q", report)
	}
}
