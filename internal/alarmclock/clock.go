// Package alarmclock is a durable exact-alarm port. Alarms live in the
// persistent store so any process can arm them and the daemon delivers them,
// including alarms that came due while nothing was running.
package alarmclock

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/scheduler"
	"github.com/julianstephens/automute/internal/storage"
)

type record struct {
	ID      int32             `json:"id"`
	At      int64             `json:"at"`
	Payload scheduler.Payload `json:"payload"`
}

// Clock implements scheduler.Port and scheduler.PendingLister on top of a storage.Provider.
type Clock struct {
	store storage.Provider
}

func New(store storage.Provider) *Clock {
	return &Clock{store: store}
}

func alarmKey(id int32) string {
	return constants.KeyAlarmPrefix + strconv.FormatInt(int64(id), 10)
}

// Arm stores the alarm, replacing any alarm with the same id.
func (c *Clock) Arm(id int32, at time.Time, payload scheduler.Payload) error {
	allowed, err := c.ExactAllowed()
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("cannot arm alarm %d: %w", id, apperrors.ErrSchedulingDenied)
	}
	data, err := json.Marshal(record{ID: id, At: at.UnixMilli(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode alarm %d: %w", id, err)
	}
	return c.store.Set(alarmKey(id), string(data))
}

// Cancel removes the alarm. Missing alarms are ignored.
func (c *Clock) Cancel(id int32) error {
	return c.store.Delete(alarmKey(id))
}

// Pending returns every armed alarm. Unreadable rows are skipped.
func (c *Clock) Pending() ([]scheduler.Alarm, error) {
	rows, err := c.store.List(constants.KeyAlarmPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	alarms := make([]scheduler.Alarm, 0, len(rows))
	for key, raw := range rows {
		var r record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			logger.Warn("Skipping malformed alarm", "key", key, "error", fmt.Errorf("%w: %v", apperrors.ErrMalformedState, err))
			continue
		}
		alarms = append(alarms, scheduler.Alarm{ID: r.ID, At: time.UnixMilli(r.At), Payload: r.Payload})
	}
	sort.Slice(alarms, func(i, j int) bool {
		if alarms[i].At.Equal(alarms[j].At) {
			return alarms[i].ID < alarms[j].ID
		}
		return alarms[i].At.Before(alarms[j].At)
	})
	return alarms, nil
}

// Due returns the alarms whose time is at or before now, oldest first.
func (c *Clock) Due(now time.Time) ([]scheduler.Alarm, error) {
	pending, err := c.Pending()
	if err != nil {
		return nil, err
	}
	var due []scheduler.Alarm
	for _, a := range pending {
		if a.At.After(now) {
			break
		}
		due = append(due, a)
	}
	return due, nil
}

// Ack removes a delivered alarm unless it was re-armed for another time since it was read.
func (c *Clock) Ack(a scheduler.Alarm) error {
	raw, ok, err := c.store.Get(alarmKey(a.ID))
	if err != nil || !ok {
		return err
	}
	var r record
	if err := json.Unmarshal([]byte(raw), &r); err == nil && r.At != a.At.UnixMilli() {
		return nil
	}
	return c.store.Delete(alarmKey(a.ID))
}

// ExactAllowed reports whether exact alarms may be armed. A missing flag means allowed.
func (c *Clock) ExactAllowed() (bool, error) {
	raw, ok, err := c.store.Get(constants.KeyExactAlarmAllowed)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return !strings.EqualFold(strings.TrimSpace(raw), "false"), nil
}

// SetExactAllowed grants or revokes the exact-alarm capability.
func (c *Clock) SetExactAllowed(allowed bool) error {
	return c.store.Set(constants.KeyExactAlarmAllowed, strconv.FormatBool(allowed))
}
