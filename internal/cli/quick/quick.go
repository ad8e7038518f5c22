package quick

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/orchestrator"
	"github.com/julianstephens/automute/internal/tui"
)

type QuickStartCmd struct {
	Minutes int `arg:"" help:"Minutes to silence the phone for (alarms still ring)."`
}

func (c *QuickStartCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Evaluate(orchestrator.QuickTimerStarted{Minutes: c.Minutes})
	if err != nil {
		return fmt.Errorf("failed to start quick timer: %w", err)
	}
	end := res.State.Quick.EndTime
	ctx.Printf("✓ Quick timer started: alarms only until %s (%s)\n",
		end.Format("15:04"), humanize.RelTime(end, ctx.CurrentTime(), "ago", "from now"))
	return nil
}

type QuickCancelCmd struct{}

func (c *QuickCancelCmd) Run(ctx *cli.Context) error {
	quick, err := ctx.Repo().QuickTimer()
	if err != nil {
		return err
	}
	if !quick.Active {
		ctx.Println("No quick timer is running.")
		return nil
	}
	if _, err := ctx.Evaluate(orchestrator.QuickTimerCancelled{}); err != nil {
		return fmt.Errorf("failed to cancel quick timer: %w", err)
	}
	ctx.Println("✓ Quick timer cancelled, notifications restored")
	return nil
}

type QuickStatusCmd struct {
	Watch bool `short:"w" help:"Open the live dashboard."`
}

func (c *QuickStatusCmd) Run(ctx *cli.Context) error {
	if c.Watch {
		// Perform automatic backup on dashboard startup (after successful load)
		ctx.PerformAutomaticBackup()
		return tui.Run(cli.NewDashboard(ctx))
	}

	quick, err := ctx.Repo().QuickTimer()
	if err != nil {
		return err
	}
	now := ctx.CurrentTime()
	switch {
	case !quick.Active:
		ctx.Println("No quick timer is running.")
	case quick.Expired(now):
		ctx.Printf("Quick timer expired at %s; it is restored on the next evaluation.\n", quick.EndTime.Format("15:04"))
	default:
		ctx.Printf("Quick timer: %s left (until %s)\n", quick.Remaining(now).Round(time.Second), quick.EndTime.Format("15:04"))
	}
	return nil
}
