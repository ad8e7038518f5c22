package quick

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/automute/internal/cli/clitest"
	"github.com/julianstephens/automute/internal/models"
)

func TestQuickLifecycle(t *testing.T) {
	env := clitest.New(t)

	if err := (&QuickStartCmd{Minutes: 30}).Run(env.Ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "alarms only until 08:30") {
		t.Errorf("unexpected start output: %q", out)
	}
	if _, filter, _ := env.Ctx.Device().Snapshot(); filter != models.FilterAlarmsOnly {
		t.Errorf("expected ALARMS_ONLY, got %s", filter)
	}

	env.Now = env.Now.Add(10 * time.Minute)
	if err := (&QuickStatusCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "Quick timer: 20m0s left (until 08:30)") {
		t.Errorf("unexpected status output: %q", out)
	}

	env.Now = env.Now.Add(25 * time.Minute)
	if err := (&QuickStatusCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "expired at 08:30") {
		t.Errorf("unexpected status output: %q", out)
	}

	if err := (&QuickCancelCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Quick timer cancelled") {
		t.Errorf("unexpected cancel output: %q", out)
	}
	mode, filter, _ := env.Ctx.Device().Snapshot()
	if filter != models.FilterAll || mode != models.RingerNormal {
		t.Errorf("expected device restored, got %s/%s", mode, filter)
	}
	if pending, _ := env.Ctx.AlarmClock().Pending(); len(pending) != 0 {
		t.Errorf("expected quick alarm cancelled, got %d pending", len(pending))
	}

	if err := (&QuickCancelCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "No quick timer is running.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestQuickStartRejects(t *testing.T) {
	env := clitest.New(t)
	for _, minutes := range []int{0, -5} {
		if err := (&QuickStartCmd{Minutes: minutes}).Run(env.Ctx); err == nil {
			t.Errorf("%d minutes: expected error", minutes)
		}
	}
	quick, _ := env.Ctx.Repo().QuickTimer()
	if quick.Active {
		t.Error("expected no quick timer")
	}
}

func TestQuickStartWithoutPolicyAccess(t *testing.T) {
	env := clitest.New(t)
	if err := env.Ctx.Device().SetPolicyAccess(false); err != nil {
		t.Fatal(err)
	}
	if err := (&QuickStartCmd{Minutes: 15}).Run(env.Ctx); err == nil {
		t.Fatal("expected start to fail without policy access")
	}
	quick, _ := env.Ctx.Repo().QuickTimer()
	if quick.Active {
		t.Error("expected failed start to leave no quick timer")
	}
	if pending, _ := env.Ctx.AlarmClock().Pending(); len(pending) != 0 {
		t.Errorf("expected armed alarm rolled back, got %d pending", len(pending))
	}
}
