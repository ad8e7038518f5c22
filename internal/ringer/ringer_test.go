package ringer

import (
	"errors"
	"testing"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/storage"
)

func TestStoreDeviceDefaults(t *testing.T) {
	d := NewStoreDevice(storage.NewMemory())

	mode, err := d.RingerMode()
	if err != nil || mode != models.RingerNormal {
		t.Errorf("expected NORMAL, got %s err=%v", mode, err)
	}
	filter, err := d.InterruptionFilter()
	if err != nil || filter != models.FilterAll {
		t.Errorf("expected ALL_ALLOWED, got %s err=%v", filter, err)
	}
	granted, err := d.PolicyAccess()
	if err != nil || !granted {
		t.Errorf("expected access granted by default, got %v err=%v", granted, err)
	}
}

func TestStoreDeviceWrites(t *testing.T) {
	store := storage.NewMemory()
	d := NewStoreDevice(store)

	if err := d.SetRingerMode(models.RingerSilent); err != nil {
		t.Fatal(err)
	}
	if err := d.SetInterruptionFilter(models.FilterNone); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := store.Get(constants.KeyDeviceRingerMode)
	if raw != "SILENT" {
		t.Errorf("expected SILENT stored, got %q", raw)
	}
	mode, filter, err := d.Snapshot()
	if err != nil || mode != models.RingerSilent || filter != models.FilterNone {
		t.Errorf("unexpected snapshot %s %s err=%v", mode, filter, err)
	}

	if err := d.SetRingerMode("LOUD"); !errors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("expected invalid mode error, got %v", err)
	}
}

func TestStoreDevicePermissionDenied(t *testing.T) {
	d := NewStoreDevice(storage.NewMemory())
	if err := d.SetPolicyAccess(false); err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name string
		call func() error
	}{
		{"get mode", func() error { _, err := d.RingerMode(); return err }},
		{"set mode", func() error { return d.SetRingerMode(models.RingerSilent) }},
		{"get filter", func() error { _, err := d.InterruptionFilter(); return err }},
		{"set filter", func() error { return d.SetInterruptionFilter(models.FilterNone) }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.call(); !errors.Is(err, apperrors.ErrPermissionDenied) {
				t.Errorf("expected permission denied, got %v", err)
			}
		})
	}

	// The user can still change the ringer by hand
	if err := d.ManualRingerMode(models.RingerVibrate); err != nil {
		t.Fatal(err)
	}
	if err := d.ManualInterruptionFilter(models.FilterAlarmsOnly); err != nil {
		t.Fatal(err)
	}
	mode, filter, _ := d.Snapshot()
	if mode != models.RingerVibrate || filter != models.FilterAlarmsOnly {
		t.Errorf("expected VIBRATE/ALARMS_ONLY, got %s/%s", mode, filter)
	}
	if err := d.ManualInterruptionFilter("LOUD"); !errors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("expected invalid filter error, got %v", err)
	}
}

func TestStoreDeviceMalformedValues(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Set(constants.KeyDeviceRingerMode, "LOUD")
	_ = store.Set(constants.KeyDeviceFilter, "???")
	mode, filter, err := NewStoreDevice(store).Snapshot()
	if err != nil || mode != models.RingerNormal || filter != models.FilterAll {
		t.Errorf("expected defaults, got %s %s err=%v", mode, filter, err)
	}
}

func TestMemoryRecordsWrites(t *testing.T) {
	m := NewMemory()
	var _ Port = m

	_ = m.SetRingerMode(models.RingerSilent)
	_ = m.SetInterruptionFilter(models.FilterAlarmsOnly)
	m.Manual(models.RingerVibrate)

	if len(m.Writes) != 2 || m.Writes[0] != "mode=SILENT" || m.Writes[1] != "filter=ALARMS_ONLY" {
		t.Errorf("unexpected writes %v", m.Writes)
	}
	if m.Mode() != models.RingerVibrate {
		t.Errorf("expected manual VIBRATE, got %s", m.Mode())
	}
}
