package models

import (
	"fmt"
	"strings"
)

// RingerMode is the audible state of the device.
type RingerMode string

const (
	RingerNormal  RingerMode = "NORMAL"
	RingerVibrate RingerMode = "VIBRATE"
	RingerSilent  RingerMode = "SILENT"
)

// ParseRingerMode accepts a mode name in any case.
func ParseRingerMode(s string) (RingerMode, error) {
	m := RingerMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid ringer mode %q (expected NORMAL, VIBRATE or SILENT)", s)
	}
	return m, nil
}

func (m RingerMode) Valid() bool {
	switch m {
	case RingerNormal, RingerVibrate, RingerSilent:
		return true
	}
	return false
}

func (m RingerMode) String() string { return string(m) }

// InterruptionFilter is the do-not-disturb policy of the device.
type InterruptionFilter string

const (
	FilterAll        InterruptionFilter = "ALL_ALLOWED"
	FilterAlarmsOnly InterruptionFilter = "ALARMS_ONLY"
	FilterNone       InterruptionFilter = "NONE_ALLOWED"
)

// ParseInterruptionFilter accepts the full name or the short forms all, alarms and none.
func ParseInterruptionFilter(s string) (InterruptionFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "all_allowed":
		return FilterAll, nil
	case "alarms", "alarms_only":
		return FilterAlarmsOnly, nil
	case "none", "none_allowed":
		return FilterNone, nil
	}
	return "", fmt.Errorf("invalid interruption filter %q (expected all, alarms or none)", s)
}

func (f InterruptionFilter) Valid() bool {
	switch f {
	case FilterAll, FilterAlarmsOnly, FilterNone:
		return true
	}
	return false
}

func (f InterruptionFilter) String() string { return string(f) }
