// Package daemon runs the long-lived automute process: the orchestrator event
// loop, the alarm dispatcher, the location source and the metrics endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/automute/internal/alarmclock"
	"github.com/julianstephens/automute/internal/location"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/metrics"
	"github.com/julianstephens/automute/internal/orchestrator"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another automute daemon is already running")

const shutdownTimeout = 5 * time.Second

type Options struct {
	LockPath     string
	PollInterval time.Duration
	// Source may be nil when no location provider is configured
	Source      location.Source
	MetricsAddr string
}

type Daemon struct {
	orch  *orchestrator.Orchestrator
	clock *alarmclock.Clock
	opts  Options
	lock  *flock.Flock

	// metricsReady receives the bound metrics address once listening
	metricsReady chan string
}

func New(orch *orchestrator.Orchestrator, clock *alarmclock.Clock, opts Options) *Daemon {
	return &Daemon{
		orch:         orch,
		clock:        clock,
		opts:         opts,
		lock:         flock.New(opts.LockPath),
		metricsReady: make(chan string, 1),
	}
}

// Run holds the single-instance lock, replays boot and serves until ctx is
// done or a component fails.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			logger.Warn("Failed to release daemon lock", "error", err)
		}
	}()
	logger.Info("automute daemon started", "lock", d.opts.LockPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.orch.Run(gctx)
	})

	g.Go(func() error {
		res, err := d.orch.Submit(gctx, orchestrator.Boot{})
		if err != nil {
			return nil
		}
		if res.Outcome == orchestrator.OutcomeFailed {
			logger.Warn("Boot replay incomplete", "error", res.Err)
		}
		dispatcher := alarmclock.NewDispatcher(d.clock, d.opts.PollInterval, d.orch.HandleAlarm)
		return dispatcher.Run(gctx)
	})

	if d.opts.Source != nil {
		g.Go(func() error {
			if err := d.opts.Source.Run(gctx, d.orch.HandleSample); err != nil {
				return fmt.Errorf("location source: %w", err)
			}
			logger.Info("Location source finished")
			return nil
		})
	}

	if d.opts.MetricsAddr != "" {
		if err := d.serveMetrics(gctx, g); err != nil {
			return err
		}
	}

	err = g.Wait()
	logger.Info("automute daemon stopped")
	return err
}

func (d *Daemon) serveMetrics(ctx context.Context, g *errgroup.Group) error {
	ln, err := net.Listen("tcp", d.opts.MetricsAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.opts.MetricsAddr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger.Info("Serving metrics", "addr", ln.Addr().String())
	d.metricsReady <- ln.Addr().String()

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return nil
}
