package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/automute/internal/alarmclock"
	"github.com/julianstephens/automute/internal/backup"
	"github.com/julianstephens/automute/internal/config"
	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
	"github.com/julianstephens/automute/internal/repository"
	"github.com/julianstephens/automute/internal/ringer"
	"github.com/julianstephens/automute/internal/scheduler"
	"github.com/julianstephens/automute/internal/storage"
	"github.com/julianstephens/automute/internal/utils"
)

type Context struct {
	Store    storage.Provider
	Config   *config.Config
	In       io.Reader
	Out      io.Writer
	Notifier orchestrator.Notifier

	// ConfigPath is the resolved TOML path, which may not exist yet
	ConfigPath string
	// Now defaults to the wall clock in the configured timezone
	Now func() time.Time

	orch *orchestrator.Orchestrator
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	loc := time.Local
	if c.Config != nil {
		if l, err := utils.LoadLocation(c.Config.Timezone); err == nil {
			loc = l
		}
	}
	return time.Now().In(loc)
}

// CurrentTime is the instant every command evaluates against.
func (c *Context) CurrentTime() time.Time {
	return c.now()
}

func (c *Context) Repo() *repository.Repository {
	return repository.New(c.Store)
}

func (c *Context) Device() *ringer.StoreDevice {
	return ringer.NewStoreDevice(c.Store)
}

func (c *Context) AlarmClock() *alarmclock.Clock {
	return alarmclock.New(c.Store)
}

// Orchestrator builds the orchestrator over the persisted device and alarm
// clock. Separate processes share the evaluation lock.
func (c *Context) Orchestrator() *orchestrator.Orchestrator {
	if c.orch != nil {
		return c.orch
	}
	opts := orchestrator.Options{
		Notifier: c.Notifier,
		Now:      c.now,
	}
	if c.Config != nil {
		opts.Policy = c.Config.Policy()
		opts.LockPath = c.Config.EvaluationLockPath()
	}
	c.orch = orchestrator.New(c.Repo(), c.Device(), scheduler.New(c.AlarmClock()), opts)
	return c.orch
}

// Evaluate runs ev in-process and turns a failed outcome into an error.
func (c *Context) Evaluate(ev orchestrator.Event) (orchestrator.Result, error) {
	res := c.Orchestrator().Evaluate(context.Background(), ev)
	if res.Outcome == orchestrator.OutcomeFailed {
		return res, res.Err
	}
	return res, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if storage.IsPostgresURL(path) || path == ":memory:" {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.Out, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on In. Anything but y or yes declines.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Colorize reports whether output goes to a terminal.
func (c *Context) Colorize() bool {
	file, ok := c.Out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// RenderTable draws rows under headers. Columns listed in right are right aligned.
func (c *Context) RenderTable(headers []string, rows [][]string, right ...int) {
	tw := table.NewWriter()
	if c.Colorize() {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(right))
	for _, col := range right {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	c.Println(tw.Render())
}

// PrintResult reports an applied evaluation's effects.
func (c *Context) PrintResult(res orchestrator.Result) {
	if res.Outcome == orchestrator.OutcomeNoOp {
		c.Printf("Nothing to do: %s\n", res.Reason)
		return
	}
	for _, e := range res.Effects {
		c.Printf("  • %s\n", e)
	}
}

var dayNames = map[string]int{
	"sun": 1, "sunday": 1,
	"mon": 2, "monday": 2,
	"tue": 3, "tuesday": 3,
	"wed": 4, "wednesday": 4,
	"thu": 5, "thursday": 5,
	"fri": 6, "friday": 6,
	"sat": 7, "saturday": 7,
}

// ParseDays parses a comma-separated list of weekdays into day numbers
// (1 = Sunday … 7 = Saturday). "daily", "weekdays" and "weekends" are shorthands.
func ParseDays(s string) ([]int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "every", "all":
		return []int{1, 2, 3, 4, 5, 6, 7}, nil
	case "weekdays":
		return []int{2, 3, 4, 5, 6}, nil
	case "weekends":
		return []int{1, 7}, nil
	}

	var days []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		day, ok := dayNames[part]
		if !ok {
			// Try parsing as number (1=Sunday, 7=Saturday)
			num, err := strconv.Atoi(part)
			if err != nil || num < models.Sunday || num > models.Saturday {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
			day = num
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays given")
	}
	return days, nil
}
