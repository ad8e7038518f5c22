package timers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/automute/internal/cli/clitest"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
)

func TestTimerAddListDelete(t *testing.T) {
	env := clitest.New(t)

	add := &TimerAddCmd{Start: "22:00", End: "06:30", Days: "fri,sat"}
	if err := add.Run(env.Ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Timer added: 22:00-06:30 on Fri,Sat") {
		t.Errorf("unexpected add output: %q", out)
	}

	timers, err := env.Ctx.Repo().Timers()
	if err != nil || len(timers) != 1 {
		t.Fatalf("expected one timer, got %v err=%v", timers, err)
	}
	id := timers[0].ID
	if len(id) != 36 {
		t.Errorf("expected a uuid id, got %q", id)
	}
	pending, _ := env.Ctx.AlarmClock().Pending()
	if len(pending) != 4 {
		t.Errorf("expected 4 armed alarms, got %d", len(pending))
	}

	if err := (&TimerListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	for _, want := range []string{id[:8], "22:00-06:30 (+1d)", "Fri,Sat", "8h30m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	if err := (&TimerDeleteCmd{ID: id[:8]}).Run(env.Ctx); err != nil {
		t.Fatalf("delete by prefix failed: %v", err)
	}
	pending, _ = env.Ctx.AlarmClock().Pending()
	if len(pending) != 0 {
		t.Errorf("expected alarms cancelled, got %d", len(pending))
	}

	env.Output()
	if err := (&TimerListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "No timers configured.") {
		t.Errorf("unexpected list output: %q", out)
	}
}

func TestTimerAddRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		cmd  TimerAddCmd
	}{
		{"bad start", TimerAddCmd{Start: "25:00", End: "10:00", Days: "mon"}},
		{"bad end", TimerAddCmd{Start: "09:00", End: "nine", Days: "mon"}},
		{"bad days", TimerAddCmd{Start: "09:00", End: "10:00", Days: "someday"}},
		{"empty window", TimerAddCmd{Start: "09:00", End: "09:00", Days: "mon"}},
		{"unknown id", TimerAddCmd{Start: "09:00", End: "10:00", Days: "mon", ID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := clitest.New(t)
			if err := tt.cmd.Run(env.Ctx); err == nil {
				t.Error("expected error")
			}
			timers, _ := env.Ctx.Repo().Timers()
			if len(timers) != 0 {
				t.Errorf("expected nothing saved, got %v", timers)
			}
		})
	}
}

func TestTimerReplace(t *testing.T) {
	env := clitest.New(t)
	if err := (&TimerAddCmd{Start: "09:00", End: "10:00", Days: "mon"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	timers, _ := env.Ctx.Repo().Timers()
	id := timers[0].ID

	replace := &TimerAddCmd{Start: "13:00", End: "14:00", Days: "tue,thu", ID: id[:6]}
	if err := replace.Run(env.Ctx); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Timer replaced") {
		t.Errorf("unexpected output: %q", out)
	}

	timers, _ = env.Ctx.Repo().Timers()
	if len(timers) != 1 || timers[0].ID != id || timers[0].StartHour != 13 {
		t.Fatalf("expected timer replaced in place, got %+v", timers)
	}
	pending, _ := env.Ctx.AlarmClock().Pending()
	if len(pending) != 4 {
		t.Errorf("expected 4 alarms after replace, got %d", len(pending))
	}
	for _, a := range pending {
		if a.Payload.Day == models.DayOfWeek(clitest.Monday) {
			t.Errorf("alarm for the old Monday window survived: %+v", a)
		}
	}
}

func TestTimerDeleteUnknown(t *testing.T) {
	env := clitest.New(t)
	err := (&TimerDeleteCmd{ID: "missing"}).Run(env.Ctx)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestResolveIDAmbiguous(t *testing.T) {
	env := clitest.New(t)
	for _, tm := range []models.DailyTimer{
		{ID: "abc-1", StartHour: 9, EndHour: 10, DaysOfWeek: []int{2}},
		{ID: "abc-2", StartHour: 11, EndHour: 12, DaysOfWeek: []int{3}},
	} {
		if _, err := env.Ctx.Evaluate(orchestrator.TimerSaved{Timer: tm}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := resolveID(env.Ctx, "abc"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
	got, err := resolveID(env.Ctx, "abc-2")
	if err != nil || got.StartHour != 11 {
		t.Errorf("expected exact match, got %+v err=%v", got, err)
	}
}

func TestTimerExport(t *testing.T) {
	env := clitest.New(t)
	if err := (&TimerAddCmd{Start: "09:00", End: "17:00", Days: "weekdays"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	env.Output()

	if err := (&TimerExportCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("export to stdout failed: %v", err)
	}
	out := env.Output()
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "FREQ=WEEKLY", "Muted (09:00-17:00)"} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar missing %q:\n%s", want, out)
		}
	}

	path := filepath.Join(t.TempDir(), "out", "timers.ics")
	if err := (&TimerExportCmd{Output: path}).Run(env.Ctx); err != nil {
		t.Fatalf("export to file failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "BEGIN:VCALENDAR") {
		t.Errorf("expected calendar file, got %q err=%v", data, err)
	}
}

func TestTimerExportEmpty(t *testing.T) {
	env := clitest.New(t)
	path := filepath.Join(t.TempDir(), "timers.ics")
	if err := (&TimerExportCmd{Output: path}).Run(env.Ctx); err == nil {
		t.Fatal("expected error exporting no timers")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file left behind, got %v", err)
	}
}
