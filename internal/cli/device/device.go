// Package device drives the simulated phone: it plays the user changing the
// ringer by hand and granting or revoking the app's capabilities.
package device

import (
	"fmt"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
)

type DeviceShowCmd struct{}

func (c *DeviceShowCmd) Run(ctx *cli.Context) error {
	dev := ctx.Device()
	mode, filter, err := dev.Snapshot()
	if err != nil {
		return err
	}
	access, err := dev.PolicyAccess()
	if err != nil {
		return err
	}
	exact, err := ctx.AlarmClock().ExactAllowed()
	if err != nil {
		return err
	}

	ctx.RenderTable([]string{"Setting", "Value"}, [][]string{
		{"Ringer mode", string(mode)},
		{"Interruption filter", string(filter)},
		{"Policy access", grantedLabel(access)},
		{"Exact alarms", grantedLabel(exact)},
	})
	return nil
}

// DeviceRingerCmd changes the ringer as the user would from the device.
type DeviceRingerCmd struct {
	Mode string `arg:"" help:"normal, vibrate or silent."`
}

func (c *DeviceRingerCmd) Run(ctx *cli.Context) error {
	mode, err := models.ParseRingerMode(c.Mode)
	if err != nil {
		return err
	}
	if err := ctx.Device().ManualRingerMode(mode); err != nil {
		return fmt.Errorf("failed to set ringer mode: %w", err)
	}
	ctx.Printf("✓ Ringer set to %s\n", mode)
	return nil
}

// DeviceFilterCmd toggles do-not-disturb as the user would.
type DeviceFilterCmd struct {
	Filter string `arg:"" help:"all, alarms or none."`
}

func (c *DeviceFilterCmd) Run(ctx *cli.Context) error {
	filter, err := models.ParseInterruptionFilter(c.Filter)
	if err != nil {
		return err
	}
	if err := ctx.Device().ManualInterruptionFilter(filter); err != nil {
		return fmt.Errorf("failed to set interruption filter: %w", err)
	}
	ctx.Printf("✓ Interruption filter set to %s\n", filter)
	return nil
}

type DeviceAccessCmd struct {
	Action string `arg:"" enum:"grant,revoke" help:"grant or revoke do-not-disturb policy access."`
}

func (c *DeviceAccessCmd) Run(ctx *cli.Context) error {
	granted := c.Action == "grant"
	if err := ctx.Device().SetPolicyAccess(granted); err != nil {
		return err
	}
	ctx.Printf("✓ Policy access %s\n", grantedLabel(granted))
	return nil
}

type DeviceExactAlarmsCmd struct {
	Action string `arg:"" enum:"allow,deny" help:"allow or deny exact alarm scheduling."`
}

func (c *DeviceExactAlarmsCmd) Run(ctx *cli.Context) error {
	allowed := c.Action == "allow"
	if err := ctx.AlarmClock().SetExactAllowed(allowed); err != nil {
		return err
	}
	ctx.Printf("✓ Exact alarms %s\n", grantedLabel(allowed))
	if !allowed {
		return nil
	}

	// Edges that fired while arming was denied were never re-armed
	if _, err := ctx.Evaluate(orchestrator.Boot{}); err != nil {
		return fmt.Errorf("failed to re-arm alarms: %w", err)
	}
	pending, err := ctx.AlarmClock().Pending()
	if err != nil {
		return err
	}
	ctx.Printf("Re-armed schedule, %d alarms pending\n", len(pending))
	return nil
}

func grantedLabel(ok bool) string {
	if ok {
		return "granted"
	}
	return "revoked"
}
