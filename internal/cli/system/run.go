package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/config"
	"github.com/julianstephens/automute/internal/daemon"
	"github.com/julianstephens/automute/internal/location"
	"github.com/julianstephens/automute/internal/logger"
)

// RunCmd runs the daemon in the foreground.
type RunCmd struct {
	Metrics string `help:"Serve Prometheus metrics on this address (overrides daemon.metrics_addr)."`
	Source  string `help:"Location source (stdin, file or none; overrides location.source)."`
}

func (c *RunCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	opts := daemon.Options{
		LockPath:     cfg.DaemonLockPath(),
		PollInterval: cfg.PollInterval(),
		MetricsAddr:  cfg.Daemon.MetricsAddr,
	}
	if c.Metrics != "" {
		opts.MetricsAddr = c.Metrics
	}

	source := cfg.Location.Source
	if c.Source != "" {
		source = c.Source
	}
	src, err := locationSource(cfg, source)
	if err != nil {
		return err
	}
	opts.Source = src

	ctx.PerformAutomaticBackup()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting daemon", "db", ctx.Store.GetConfigPath(), "source", source, "metrics", opts.MetricsAddr)
	ctx.Printf("automute daemon running (location source: %s). Press Ctrl+C to stop.\n", source)

	d := daemon.New(ctx.Orchestrator(), ctx.AlarmClock(), opts)
	if err := d.Run(runCtx); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			return fmt.Errorf("%w (lock: %s)", err, opts.LockPath)
		}
		return err
	}
	ctx.Println("automute daemon stopped.")
	return nil
}

func locationSource(cfg *config.Config, source string) (location.Source, error) {
	switch source {
	case config.SourceStdin:
		return location.NewReaderSource(os.Stdin, cfg.MinLocationInterval()), nil
	case config.SourceFile:
		if cfg.Location.File == "" {
			return nil, fmt.Errorf("location.file must be set for the file source")
		}
		return location.NewFileSource(cfg.Location.File, cfg.MinLocationInterval()), nil
	case config.SourceNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown location source %q", source)
}
