package tui

import (
	"time"

	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
)

// Status is everything the dashboard shows at one instant.
type Status struct {
	Now         time.Time
	Quick       models.QuickTimer
	Ringer      models.RingerMode
	Filter      models.InterruptionFilter
	DeviceErr   error
	MutedByApp  bool
	ActiveTimer *models.DailyTimer
	Locations   []models.SavedLocation
	Pending     []scheduler.Alarm
}

// Backend reads status and performs the few actions the dashboard offers.
type Backend interface {
	Status() (Status, error)
	CancelQuick() error
	DeleteLocation(name string) error
}
