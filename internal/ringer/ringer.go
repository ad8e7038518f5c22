// Package ringer provides the ringer control port: the device's audible mode
// and its interruption filter.
package ringer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/storage"
)

// Port controls the device. Every call requires do-not-disturb policy access.
type Port interface {
	RingerMode() (models.RingerMode, error)
	SetRingerMode(mode models.RingerMode) error
	InterruptionFilter() (models.InterruptionFilter, error)
	SetInterruptionFilter(filter models.InterruptionFilter) error
}

// StoreDevice is a simulated device whose state lives in the persistent store,
// so the CLI can play the user changing the ringer by hand.
type StoreDevice struct {
	store storage.Provider
}

func NewStoreDevice(store storage.Provider) *StoreDevice {
	return &StoreDevice{store: store}
}

func (d *StoreDevice) RingerMode() (models.RingerMode, error) {
	if err := d.checkAccess(); err != nil {
		return "", err
	}
	return d.readMode()
}

func (d *StoreDevice) SetRingerMode(mode models.RingerMode) error {
	if err := d.checkAccess(); err != nil {
		return err
	}
	return d.writeMode(mode)
}

func (d *StoreDevice) InterruptionFilter() (models.InterruptionFilter, error) {
	if err := d.checkAccess(); err != nil {
		return "", err
	}
	return d.readFilter()
}

func (d *StoreDevice) SetInterruptionFilter(filter models.InterruptionFilter) error {
	if err := d.checkAccess(); err != nil {
		return err
	}
	return d.writeFilter(filter)
}

// ManualRingerMode changes the ringer the way the user would from the device,
// without policy access and without touching attribution.
func (d *StoreDevice) ManualRingerMode(mode models.RingerMode) error {
	return d.writeMode(mode)
}

// ManualInterruptionFilter toggles do-not-disturb the way the user would.
func (d *StoreDevice) ManualInterruptionFilter(filter models.InterruptionFilter) error {
	return d.writeFilter(filter)
}

// Snapshot reads mode and filter regardless of policy access.
func (d *StoreDevice) Snapshot() (models.RingerMode, models.InterruptionFilter, error) {
	mode, err := d.readMode()
	if err != nil {
		return "", "", err
	}
	filter, err := d.readFilter()
	if err != nil {
		return "", "", err
	}
	return mode, filter, nil
}

// PolicyAccess reports whether do-not-disturb policy access is granted. A missing flag means granted.
func (d *StoreDevice) PolicyAccess() (bool, error) {
	raw, ok, err := d.store.Get(constants.KeyDevicePolicyAccess)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	granted, perr := strconv.ParseBool(strings.TrimSpace(raw))
	if perr != nil {
		logger.Warn("Treating malformed policy access flag as granted", "value", raw)
		return true, nil
	}
	return granted, nil
}

func (d *StoreDevice) SetPolicyAccess(granted bool) error {
	return d.store.Set(constants.KeyDevicePolicyAccess, strconv.FormatBool(granted))
}

func (d *StoreDevice) checkAccess() error {
	granted, err := d.PolicyAccess()
	if err != nil {
		return err
	}
	if !granted {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func (d *StoreDevice) readMode() (models.RingerMode, error) {
	raw, ok, err := d.store.Get(constants.KeyDeviceRingerMode)
	if err != nil {
		return "", fmt.Errorf("failed to read ringer mode: %w", err)
	}
	if !ok {
		return models.RingerNormal, nil
	}
	mode, perr := models.ParseRingerMode(raw)
	if perr != nil {
		logger.Warn("Treating malformed ringer mode as NORMAL", "value", raw)
		return models.RingerNormal, nil
	}
	return mode, nil
}

func (d *StoreDevice) writeMode(mode models.RingerMode) error {
	if !mode.Valid() {
		return apperrors.Invalidf("unknown ringer mode %q", mode)
	}
	return d.store.Set(constants.KeyDeviceRingerMode, string(mode))
}

func (d *StoreDevice) writeFilter(filter models.InterruptionFilter) error {
	if !filter.Valid() {
		return apperrors.Invalidf("unknown interruption filter %q", filter)
	}
	return d.store.Set(constants.KeyDeviceFilter, string(filter))
}

func (d *StoreDevice) readFilter() (models.InterruptionFilter, error) {
	raw, ok, err := d.store.Get(constants.KeyDeviceFilter)
	if err != nil {
		return "", fmt.Errorf("failed to read interruption filter: %w", err)
	}
	if !ok {
		return models.FilterAll, nil
	}
	filter, perr := models.ParseInterruptionFilter(raw)
	if perr != nil {
		logger.Warn("Treating malformed interruption filter as ALL_ALLOWED", "value", raw)
		return models.FilterAll, nil
	}
	return filter, nil
}
