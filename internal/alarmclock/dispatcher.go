package alarmclock

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/metrics"
	"github.com/julianstephens/automute/internal/scheduler"
)

// Handler is invoked once per due alarm.
type Handler func(ctx context.Context, a scheduler.Alarm) error

// Dispatcher polls the clock and hands due alarms to a handler.
type Dispatcher struct {
	clock    *Clock
	interval time.Duration
	handler  Handler
	now      func() time.Time
}

func NewDispatcher(clock *Clock, interval time.Duration, handler Handler) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{clock: clock, interval: interval, handler: handler, now: time.Now}
}

// Run delivers due alarms until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("Alarm dispatch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick delivers every alarm due now and returns how many were handled.
// Handler failures are logged and the alarm is still acknowledged. Edges lost
// to a denied re-arm come back when exact alarms are allowed again and Boot replays.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	due, err := d.clock.Due(d.now())
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, a := range due {
		if err := d.handler(ctx, a); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Left armed for the next run
				return handled, err
			}
			logger.Warn("Alarm handler failed", "id", a.ID, "kind", a.Payload.Kind, "error", err)
		}
		if err := d.clock.Ack(a); err != nil {
			return handled, err
		}
		handled++
	}

	if pending, err := d.clock.Pending(); err == nil {
		metrics.SetPendingAlarms(len(pending))
	}
	return handled, nil
}
