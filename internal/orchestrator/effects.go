package orchestrator

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/metrics"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/ringer"
	"github.com/julianstephens/automute/internal/scheduler"
)

type EffectKind string

const (
	EffectSetRingerMode EffectKind = "set_ringer_mode"
	EffectSetFilter     EffectKind = "set_interruption_filter"
	EffectArmQuick      EffectKind = "arm_quick"
	EffectCancelQuick   EffectKind = "cancel_quick"
	EffectSchedule      EffectKind = "schedule_timer"
	EffectCancelTimer   EffectKind = "cancel_timer"
	EffectRearm         EffectKind = "rearm_timer"
)

// Effect is one port call a decision asks for.
type Effect struct {
	Kind   EffectKind
	Mode   models.RingerMode
	Filter models.InterruptionFilter
	At     time.Time
	Timer  models.DailyTimer
	Day    int

	// ContinueOnError lets later effects run when this one fails
	ContinueOnError bool
	// Undo reverses the effect when a later one fails. Undos must be idempotent.
	Undo *Effect
}

func setRinger(mode models.RingerMode) Effect {
	return Effect{Kind: EffectSetRingerMode, Mode: mode}
}

func setFilter(filter models.InterruptionFilter) Effect {
	return Effect{Kind: EffectSetFilter, Filter: filter}
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectSetRingerMode:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Mode)
	case EffectSetFilter:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Filter)
	case EffectArmQuick:
		return fmt.Sprintf("%s(%s)", e.Kind, e.At.Format(time.RFC3339))
	case EffectSchedule, EffectCancelTimer:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Timer.ID)
	case EffectRearm:
		return fmt.Sprintf("%s(%s, day %d)", e.Kind, e.Timer.ID, e.Day)
	}
	return string(e.Kind)
}

// port names the collaborator an effect talks to
func (e Effect) port() string {
	switch e.Kind {
	case EffectSetRingerMode, EffectSetFilter:
		return "ringer"
	}
	return "scheduler"
}

// applier runs effects against the ports and remembers what it applied.
type applier struct {
	ringer    ringer.Port
	scheduler *scheduler.Scheduler
	now       time.Time
	applied   []Effect
}
func (a *applier) do(e Effect) error {
	switch e.Kind {
	case EffectSetRingerMode:
		if err := a.ringer.SetRingerMode(e.Mode); err != nil {
			return err
		}
		metrics.RecordRingerChange("ringer_mode", string(e.Mode))
	case EffectSetFilter:
		if err := a.ringer.SetInterruptionFilter(e.Filter); err != nil {
			return err
		}
		metrics.RecordRingerChange("interruption_filter", string(e.Filter))
	case EffectArmQuick:
		return a.scheduler.ArmQuick(e.At)
	case EffectCancelQuick:
		return a.scheduler.CancelQuick()
	case EffectSchedule:
		return a.scheduler.Schedule(e.Timer, a.now)
	case EffectCancelTimer:
		return a.scheduler.Cancel(e.Timer)
	case EffectRearm:
		return a.scheduler.Rearm(e.Timer, e.Day, a.now)
	default:
		return fmt.Errorf("unknown effect %q", e.Kind)
	}
	return nil
}

// apply runs effects in order. A failing effect without ContinueOnError stops
// the run and undoes what was applied, newest first; fatal is then true.
// Failures of ContinueOnError effects are collected in err.
func (a *applier) apply(effects []Effect) (fatal bool, err error) {
	var errs []error

	for _, e := range effects {
		if ferr := a.do(e); ferr != nil {
			metrics.RecordPortFailure(e.port(), string(apperrors.KindOf(ferr)))
			ferr = fmt.Errorf("%s: %w", e, ferr)
			errs = append(errs, ferr)
			if e.ContinueOnError {
				logger.Warn("Effect failed, continuing", "effect", e.String(), "error", ferr)
				continue
			}
			if e.Undo != nil {
				a.applied = append(a.applied, e)
			}
			a.rollback()
			return true, errors.Join(errs...)
		}
		a.applied = append(a.applied, e)
	}
	return false, errors.Join(errs...)
}

// rollback undoes every applied effect, newest first.
func (a *applier) rollback() {
	applied := a.applied
	a.applied = nil
	for i := len(applied) - 1; i >= 0; i-- {
		undo := applied[i].Undo
		if undo == nil {
			continue
		}
		if err := a.do(*undo); err != nil {
			logger.Error("Rollback failed", "effect", undo.String(), "error", err)
		}
	}
}
