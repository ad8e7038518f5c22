package utils

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty is local", timezone: ""},
		{name: "Local", timezone: "Local"},
		{name: "UTC", timezone: "UTC"},
		{name: "IANA name", timezone: "America/New_York"},
		{name: "invalid", timezone: "Mars/Olympus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Error("expected a location")
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in         string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{in: "09:00", wantHour: 9},
		{in: "23:59", wantHour: 23, wantMinute: 59},
		{in: " 07:05 ", wantHour: 7, wantMinute: 5},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (h != tt.wantHour || m != tt.wantMinute) {
				t.Errorf("expected %02d:%02d, got %02d:%02d", tt.wantHour, tt.wantMinute, h, m)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(7, 5); got != "07:05" {
		t.Errorf("expected 07:05, got %s", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	got, err := ExpandHome("~/.config/automute/automute.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/home/tester", ".config/automute/automute.db")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	abs, _ := ExpandHome("/var/lib/automute.db")
	if abs != "/var/lib/automute.db" {
		t.Errorf("absolute path changed: %s", abs)
	}
	if strings.HasPrefix(abs, "~") {
		t.Error("unexpected tilde")
	}
}

func TestEpochMillisRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	if got := FromEpochMillis(EpochMillis(now), time.UTC); !got.Equal(now) {
		t.Errorf("expected %v, got %v", now, got)
	}
}
