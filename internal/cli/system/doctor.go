package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/automute/internal/backup"
	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/keyring"
	"github.com/julianstephens/automute/internal/scheduler"
	"github.com/julianstephens/automute/internal/storage"
	"github.com/julianstephens/automute/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warn marks checks whose failure is only advisory
	warn bool
	// offline checks still run when the database is unreachable
	offline bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable, offline: true},
	{name: "Persisted state readable", run: checkStateReadable},
	{name: "Policy access", run: checkPolicyAccess},
	{name: "Exact alarms", run: checkExactAlarms},
	{name: "Alarms armed", run: checkAlarmsArmed},
	{name: "Data validation", run: checkValidation},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "OS keyring", run: checkKeyring, warn: true, offline: true},
	{name: "Clock/timezone", run: checkClockTimezone, offline: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for _, chk := range checks {
		if !dbReachable && !chk.offline {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", chk.name)
			continue
		}
		err := chk.run(ctx)
		if err != nil && chk.name == "Database reachable" {
			dbReachable = false
		}
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", chk.name)
		case chk.warn:
			ctx.Printf("⚠ %s: WARNING\n", chk.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", chk.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func checkStateReadable(ctx *cli.Context) error {
	repo := ctx.Repo()
	if _, err := repo.Locations(); err != nil {
		return err
	}
	if _, err := repo.Timers(); err != nil {
		return err
	}
	if _, err := repo.QuickTimer(); err != nil {
		return err
	}
	_, _, err := ctx.Device().Snapshot()
	return err
}

func checkPolicyAccess(ctx *cli.Context) error {
	granted, err := ctx.Device().PolicyAccess()
	if err != nil {
		return err
	}
	if !granted {
		return fmt.Errorf("do-not-disturb policy access is revoked; grant it with 'automute device access grant'")
	}
	return nil
}

func checkExactAlarms(ctx *cli.Context) error {
	allowed, err := ctx.AlarmClock().ExactAllowed()
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("exact alarm scheduling is revoked; allow it with 'automute device exact-alarms allow'")
	}
	return nil
}

// checkAlarmsArmed verifies every edge of every timer has an alarm pending.
func checkAlarmsArmed(ctx *cli.Context) error {
	timers, err := ctx.Repo().Timers()
	if err != nil {
		return err
	}
	pending, err := ctx.AlarmClock().Pending()
	if err != nil {
		return err
	}
	armed := make(map[int32]bool, len(pending))
	for _, a := range pending {
		armed[a.ID] = true
	}

	missing := 0
	now := ctx.CurrentTime()
	for _, t := range timers {
		planned, err := scheduler.Plan(t, now)
		if err != nil {
			return err
		}
		for _, a := range planned {
			if !armed[a.ID] {
				missing++
			}
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d timer alarms are not armed; run 'automute boot' to re-arm them", missing)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	repo := ctx.Repo()
	locations, err := repo.Locations()
	if err != nil {
		return err
	}
	timers, err := repo.Timers()
	if err != nil {
		return err
	}
	result := validation.New().Validate(locations, timers)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflicts found; run 'automute validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if storage.IsPostgresURL(path) {
		return fmt.Errorf("backups are only taken for sqlite databases")
	}
	mgr := backup.NewManager(path)
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'automute backup create'")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !storage.IsPostgresURL(ctx.Store.GetConfigPath()) {
		return nil
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.CurrentTime()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if now.Location() == time.UTC {
		ctx.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
