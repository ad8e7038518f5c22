package system

import (
	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/orchestrator"
)

// BootCmd replays persisted timers into the alarm clock, as after a restart.
type BootCmd struct{}

func (c *BootCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Evaluate(orchestrator.Boot{})
	if err != nil {
		return err
	}
	pending, err := ctx.AlarmClock().Pending()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Boot replay %s, %d alarms armed\n", res.Outcome, len(pending))
	return nil
}
