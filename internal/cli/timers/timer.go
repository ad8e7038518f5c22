package timers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/julianstephens/automute/internal/cli"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/export"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
	"github.com/julianstephens/automute/internal/scheduler"
	"github.com/julianstephens/automute/internal/utils"
)

type TimerAddCmd struct {
	Start string `arg:"" help:"Window start (HH:MM)."`
	End   string `arg:"" help:"Window end (HH:MM). An end before the start runs past midnight."`
	Days  string `help:"Comma-separated weekdays (e.g., mon,wed,fri), or daily, weekdays, weekends." default:"daily"`
	ID    string `help:"Replace the timer with this id instead of adding a new one."`
}

func (c *TimerAddCmd) Run(ctx *cli.Context) error {
	startHour, startMinute, err := utils.ParseClock(c.Start)
	if err != nil {
		return err
	}
	endHour, endMinute, err := utils.ParseClock(c.End)
	if err != nil {
		return err
	}
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return fmt.Errorf("failed to parse weekdays: %w", err)
	}

	id := c.ID
	replacing := id != ""
	if replacing {
		existing, err := resolveID(ctx, id)
		if err != nil {
			return err
		}
		id = existing.ID
	} else {
		id = uuid.New().String()
	}

	timer := models.DailyTimer{
		ID:          id,
		StartHour:   startHour,
		StartMinute: startMinute,
		EndHour:     endHour,
		EndMinute:   endMinute,
		DaysOfWeek:  days,
	}
	if err := timer.Validate(); err != nil {
		return err
	}

	if _, err := ctx.Evaluate(orchestrator.TimerSaved{Timer: timer}); err != nil {
		return fmt.Errorf("failed to save timer: %w", err)
	}

	verb := "added"
	if replacing {
		verb = "replaced"
	}
	ctx.Printf("✓ Timer %s: %s-%s on %s (%s)\n", verb, timer.FormatStart(), timer.FormatEnd(), timer.FormatDays(), shortID(timer.ID))
	return nil
}

type TimerListCmd struct{}

func (c *TimerListCmd) Run(ctx *cli.Context) error {
	timers, err := ctx.Repo().Timers()
	if err != nil {
		return fmt.Errorf("failed to get timers: %w", err)
	}
	if len(timers) == 0 {
		ctx.Println("No timers configured.")
		return nil
	}

	now := ctx.CurrentTime()
	rows := make([][]string, 0, len(timers))
	for i := range timers {
		t := &timers[i]
		window := t.FormatStart() + "-" + t.FormatEnd()
		if t.Overnight() {
			window += " (+1d)"
		}
		status := nextStart(*t, now)
		if t.Contains(now) {
			status = "active now"
		}
		rows = append(rows, []string{
			shortID(t.ID),
			window,
			t.FormatDays(),
			t.Duration().String(),
			status,
		})
	}
	ctx.RenderTable([]string{"ID", "Window", "Days", "Length", "Next"}, rows, 4)
	return nil
}

func nextStart(t models.DailyTimer, now time.Time) string {
	var next time.Time
	for _, day := range t.DaysOfWeek {
		at, err := scheduler.NextOccurrence(now, day, t.StartHour, t.StartMinute)
		if err != nil {
			continue
		}
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	if next.IsZero() {
		return "-"
	}
	return humanize.RelTime(next, now, "ago", "from now")
}

type TimerDeleteCmd struct {
	ID string `arg:"" help:"Timer id or unique id prefix."`
}

func (c *TimerDeleteCmd) Run(ctx *cli.Context) error {
	timer, err := resolveID(ctx, c.ID)
	if err != nil {
		return err
	}
	res, err := ctx.Evaluate(orchestrator.TimerDeleted{ID: timer.ID})
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}
	ctx.Printf("✓ Timer deleted: %s-%s on %s\n", timer.FormatStart(), timer.FormatEnd(), timer.FormatDays())
	ctx.PrintResult(res)
	return nil
}

type TimerExportCmd struct {
	Output string `short:"o" help:"Write the calendar to this file instead of stdout." type:"path"`
}

func (c *TimerExportCmd) Run(ctx *cli.Context) error {
	timers, err := ctx.Repo().Timers()
	if err != nil {
		return fmt.Errorf("failed to get timers: %w", err)
	}

	if c.Output == "" {
		return export.Write(ctx.Out, timers, ctx.CurrentTime())
	}

	if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := export.Write(f, timers, ctx.CurrentTime()); err != nil {
		f.Close()
		os.Remove(c.Output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("✓ Exported %d timers to %s\n", len(timers), c.Output)
	return nil
}

// resolveID finds a timer by full id or unique prefix.
func resolveID(ctx *cli.Context, id string) (models.DailyTimer, error) {
	timers, err := ctx.Repo().Timers()
	if err != nil {
		return models.DailyTimer{}, fmt.Errorf("failed to get timers: %w", err)
	}
	var matches []models.DailyTimer
	for _, t := range timers {
		if t.ID == id {
			return t, nil
		}
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.DailyTimer{}, fmt.Errorf("%w: timer %s", apperrors.ErrNotFound, id)
	case 1:
		return matches[0], nil
	}
	return models.DailyTimer{}, fmt.Errorf("timer id %q is ambiguous (%d matches)", id, len(matches))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
