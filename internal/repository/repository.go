// Package repository maps automute's persisted state onto the key-value store.
//
// Collections are stored as ordered JSON arrays; corrupt values read back as
// empty and are logged, never returned as errors.
package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/storage"
)

type Repository struct {
	store storage.Provider
}

func New(store storage.Provider) *Repository {
	return &Repository{store: store}
}

// Store exposes the underlying provider for components sharing it
func (r *Repository) Store() storage.Provider {
	return r.store
}

// Locations returns saved locations in storage order.
func (r *Repository) Locations() ([]models.SavedLocation, error) {
	return readList[models.SavedLocation](r.store, constants.KeyLocations)
}

// Timers returns daily timers in storage order.
func (r *Repository) Timers() ([]models.DailyTimer, error) {
	return readList[models.DailyTimer](r.store, constants.KeyDailyTimers)
}

// Timer reads one timer from its single-object key.
func (r *Repository) Timer(id string) (models.DailyTimer, bool, error) {
	var timer models.DailyTimer
	raw, ok, err := r.store.Get(constants.DailyTimerKey(id))
	if err != nil || !ok {
		return timer, false, err
	}
	if err := json.Unmarshal([]byte(raw), &timer); err != nil {
		logger.Warn("Ignoring malformed timer", "key", constants.DailyTimerKey(id), "error", fmt.Errorf("%w: %v", apperrors.ErrMalformedState, err))
		return models.DailyTimer{}, false, nil
	}
	return timer, true, nil
}

// QuickTimer returns the quick timer singleton.
func (r *Repository) QuickTimer() (models.QuickTimer, error) {
	active, err := r.readBool(constants.KeyQuickTimerActive)
	if err != nil {
		return models.QuickTimer{}, err
	}
	raw, ok, err := r.store.Get(constants.KeyQuickTimerEndTime)
	if err != nil {
		return models.QuickTimer{}, err
	}
	q := models.QuickTimer{Active: active}
	if ok {
		ms, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if perr != nil {
			logger.Warn("Ignoring malformed quick timer end time", "value", raw, "error", perr)
			// An active timer without an end time is treated as already expired
			ms = 0
		}
		q.EndTime = time.UnixMilli(ms)
	}
	return q, nil
}

// MutedByApp returns the attribution flag.
func (r *Repository) MutedByApp() (bool, error) {
	return r.readBool(constants.KeyMutedByApp)
}

// Change describes a state commit. Nil fields are left untouched.
type Change struct {
	Locations  *[]models.SavedLocation
	Timers     *[]models.DailyTimer
	Quick      *models.QuickTimer
	MutedByApp *bool
}

// Empty reports whether the change writes nothing
func (c Change) Empty() bool {
	return c.Locations == nil && c.Timers == nil && c.Quick == nil && c.MutedByApp == nil
}

// Commit writes every field of c in one atomic batch.
func (r *Repository) Commit(c Change) error {
	var b storage.Batch

	if c.Locations != nil {
		data, err := json.Marshal(nonNil(*c.Locations))
		if err != nil {
			return fmt.Errorf("failed to encode locations: %w", err)
		}
		b.Put(constants.KeyLocations, string(data))
	}

	if c.Timers != nil {
		if err := r.stageTimers(&b, *c.Timers); err != nil {
			return err
		}
	}

	if c.Quick != nil {
		b.Put(constants.KeyQuickTimerActive, strconv.FormatBool(c.Quick.Active))
		if c.Quick.Active {
			b.Put(constants.KeyQuickTimerEndTime, strconv.FormatInt(c.Quick.EndTime.UnixMilli(), 10))
		} else {
			b.Remove(constants.KeyQuickTimerEndTime)
		}
	}

	if c.MutedByApp != nil {
		b.Put(constants.KeyMutedByApp, strconv.FormatBool(*c.MutedByApp))
	}

	return r.store.Apply(b)
}

// stageTimers writes the ordered list plus one mirror key per timer and drops mirrors of removed timers
func (r *Repository) stageTimers(b *storage.Batch, timers []models.DailyTimer) error {
	data, err := json.Marshal(nonNil(timers))
	if err != nil {
		return fmt.Errorf("failed to encode timers: %w", err)
	}
	b.Put(constants.KeyDailyTimers, string(data))

	keep := make(map[string]bool, len(timers))
	for _, t := range timers {
		single, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode timer %s: %w", t.ID, err)
		}
		key := constants.DailyTimerKey(t.ID)
		b.Put(key, string(single))
		keep[key] = true
	}

	existing, err := r.store.List(constants.KeyDailyTimerPrefix)
	if err != nil {
		return err
	}
	for key := range existing {
		if !keep[key] {
			b.Remove(key)
		}
	}
	return nil
}

func readList[T any](store storage.Provider, key string) ([]T, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Warn("Treating malformed state as empty", "key", key, "error", fmt.Errorf("%w: %v", apperrors.ErrMalformedState, err))
		return nil, nil
	}
	return out, nil
}

func (r *Repository) readBool(key string) (bool, error) {
	raw, ok, err := r.store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	v, perr := strconv.ParseBool(strings.TrimSpace(raw))
	if perr != nil {
		logger.Warn("Treating malformed flag as false", "key", key, "value", raw)
		return false, nil
	}
	return v, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
