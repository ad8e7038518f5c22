// Package orchestrator is the single authority over the device's ringer and
// interruption filter. It reconciles the quick timer, daily timer windows and
// geofences, and remembers whether the current mute is its own doing so it
// never undoes a mute the user chose.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/julianstephens/automute/internal/constants"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/metrics"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/repository"
	"github.com/julianstephens/automute/internal/ringer"
	"github.com/julianstephens/automute/internal/scheduler"
)

// Notifier shows a one-time message to the user.
type Notifier interface {
	Notify(text string) error
}

type Options struct {
	Policy Policy
	// LockPath is a file locked around every evaluation so separate processes
	// never interleave. Empty disables it.
	LockPath string
	Notifier Notifier
	Now      func() time.Time
}

// Result reports what an evaluation did.
type Result struct {
	Trigger string
	Outcome Outcome
	Reason  string
	Effects []Effect
	State   State
	Err     error
}

type request struct {
	ev    Event
	reply chan Result
}

type Orchestrator struct {
	repo      *repository.Repository
	ringer    ringer.Port
	scheduler *scheduler.Scheduler
	policy    Policy
	notifier  Notifier
	now       func() time.Time

	mu    sync.Mutex
	lock  *flock.Flock
	inbox chan request
}

func New(repo *repository.Repository, port ringer.Port, sched *scheduler.Scheduler, opts Options) *Orchestrator {
	o := &Orchestrator{
		repo:      repo,
		ringer:    port,
		scheduler: sched,
		policy:    opts.Policy,
		notifier:  opts.Notifier,
		now:       opts.Now,
		inbox:     make(chan request),
	}
	if o.now == nil {
		o.now = time.Now
	}
	if opts.LockPath != "" {
		o.lock = flock.New(opts.LockPath)
	}
	return o
}

// Evaluate runs one event to completion: load state, decide, apply effects,
// commit. Port failures end up in the result and never escape as panics.
func (o *Orchestrator) Evaluate(ctx context.Context, ev Event) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.lock != nil {
		locked, err := o.lock.TryLockContext(ctx, constants.EvaluationLockRetry)
		if err == nil && !locked {
			err = fmt.Errorf("evaluation lock %s is held", o.lock.Path())
		}
		if err != nil {
			res := Result{Trigger: ev.Trigger(), Outcome: OutcomeFailed, Err: err}
			o.report(ev, res)
			return res
		}
		defer func() {
			if err := o.lock.Unlock(); err != nil {
				logger.Warn("Failed to release evaluation lock", "error", err)
			}
		}()
	}

	res := o.evaluate(ev)
	o.report(ev, res)
	return res
}

func (o *Orchestrator) evaluate(ev Event) Result {
	now := o.now()
	res := Result{Trigger: ev.Trigger()}

	snap, err := o.load(ev, now)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("failed to load state: %w", err)
		return res
	}
	res.State = snap.State

	d := Decide(snap, ev, o.policy)
	res.Reason = d.Reason
	if d.Err != nil {
		res.Outcome = OutcomeFailed
		res.Err = d.Err
		return res
	}
	if d.NoOp() {
		res.Outcome = OutcomeNoOp
		return res
	}

	ap := &applier{ringer: o.ringer, scheduler: o.scheduler, now: now}
	fatal, err := ap.apply(d.Effects)
	res.Effects = d.Effects
	if fatal {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if cerr := o.repo.Commit(d.Change); cerr != nil {
		metrics.RecordPortFailure("store", "other")
		ap.rollback()
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("failed to commit state: %w", cerr)
		return res
	}

	res.State = d.Next
	res.Outcome = OutcomeApplied
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
	}
	return res
}

func (o *Orchestrator) load(ev Event, now time.Time) (Snapshot, error) {
	snap := Snapshot{Now: now}

	quick, err := o.repo.QuickTimer()
	if err != nil {
		return snap, err
	}
	muted, err := o.repo.MutedByApp()
	if err != nil {
		return snap, err
	}
	snap.State = State{Quick: quick, MutedByApp: muted}

	if snap.Locations, err = o.repo.Locations(); err != nil {
		return snap, err
	}
	if snap.Timers, err = o.repo.Timers(); err != nil {
		return snap, err
	}

	switch e := ev.(type) {
	case LocationSample:
		snap.Ringer, snap.RingerErr = o.ringer.RingerMode()
	case QuickTimerStarted:
		snap.Filter, snap.FilterErr = o.ringer.InterruptionFilter()
	case AlarmFired:
		timer, ok, err := o.repo.Timer(e.TimerID)
		if err != nil {
			return snap, err
		}
		if ok {
			snap.Fired = &timer
		}
	}
	return snap, nil
}

func (o *Orchestrator) report(ev Event, res Result) {
	metrics.RecordEvaluation(res.Trigger, string(res.Outcome))

	switch res.Outcome {
	case OutcomeApplied:
		logger.Info("Evaluation applied", "trigger", res.Trigger, "reason", res.Reason, "effects", len(res.Effects), "muted_by_app", res.State.MutedByApp)
	case OutcomeNoOp:
		logger.Debug("Evaluation changed nothing", "trigger", res.Trigger, "reason", res.Reason)
	case OutcomeFailed:
		if ev.UserInitiated() {
			logger.Error("Evaluation failed", "trigger", res.Trigger, "error", res.Err)
			o.notify(fmt.Sprintf("Could not apply %s: %v", res.Trigger, res.Err))
		} else {
			logger.Warn("Evaluation failed", "trigger", res.Trigger, "error", res.Err)
		}
	}
}

func (o *Orchestrator) notify(text string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(text); err != nil {
		logger.Debug("Notification not shown", "error", err)
	}
}

// Submit hands ev to the Run loop and waits for its result.
func (o *Orchestrator) Submit(ctx context.Context, ev Event) (Result, error) {
	req := request{ev: ev, reply: make(chan Result, 1)}
	select {
	case o.inbox <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Run evaluates submitted events one at a time until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-o.inbox:
			req.reply <- o.Evaluate(ctx, req.ev)
		}
	}
}

// HandleAlarm adapts the orchestrator to an alarm dispatcher.
func (o *Orchestrator) HandleAlarm(ctx context.Context, a scheduler.Alarm) error {
	res, err := o.Submit(ctx, EventForAlarm(a))
	if err != nil {
		return err
	}
	return res.Err
}

// HandleSample adapts the orchestrator to a location source.
func (o *Orchestrator) HandleSample(ctx context.Context, s models.LocationSample) error {
	res, err := o.Submit(ctx, LocationSample{Sample: s})
	if err != nil {
		return err
	}
	return res.Err
}
