package alarmclock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/automute/internal/constants"
	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/scheduler"
	"github.com/julianstephens/automute/internal/storage"
)

var base = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func startPayload() scheduler.Payload {
	return scheduler.Payload{Kind: scheduler.KindDaily, TimerID: "work", Day: 2, Edge: models.EdgeStart}
}

func TestArmReplacesByID(t *testing.T) {
	clock := New(storage.NewMemory())

	if err := clock.Arm(7, base, startPayload()); err != nil {
		t.Fatal(err)
	}
	if err := clock.Arm(7, base.Add(time.Hour), startPayload()); err != nil {
		t.Fatal(err)
	}

	pending, err := clock.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 alarm, got %d", len(pending))
	}
	if !pending[0].At.Equal(base.Add(time.Hour)) || pending[0].Payload != startPayload() {
		t.Errorf("unexpected alarm %+v", pending[0])
	}
}

func TestCancelMissingIsNoOp(t *testing.T) {
	clock := New(storage.NewMemory())
	if err := clock.Cancel(42); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestArmDeniedWithoutExactAlarms(t *testing.T) {
	store := storage.NewMemory()
	clock := New(store)
	if err := clock.SetExactAllowed(false); err != nil {
		t.Fatal(err)
	}

	err := clock.Arm(1, base, startPayload())
	if !errors.Is(err, apperrors.ErrSchedulingDenied) {
		t.Fatalf("expected scheduling denied, got %v", err)
	}
	if rows, _ := store.List(constants.KeyAlarmPrefix); len(rows) != 0 {
		t.Error("denied alarm must not be stored")
	}

	if err := clock.SetExactAllowed(true); err != nil {
		t.Fatal(err)
	}
	if err := clock.Arm(1, base, startPayload()); err != nil {
		t.Errorf("expected arm to succeed after grant, got %v", err)
	}
}

func TestPendingSkipsMalformed(t *testing.T) {
	store := storage.NewMemory()
	clock := New(store)
	_ = clock.Arm(1, base, startPayload())
	_ = store.Set(constants.KeyAlarmPrefix+"99", "{not json")

	pending, err := clock.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != 1 {
		t.Errorf("expected only the valid alarm, got %+v", pending)
	}
}

func TestDue(t *testing.T) {
	clock := New(storage.NewMemory())
	_ = clock.Arm(1, base, startPayload())
	_ = clock.Arm(2, base.Add(time.Minute), startPayload())
	_ = clock.Arm(3, base.Add(-time.Minute), startPayload())

	due, err := clock.Due(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 || due[0].ID != 3 || due[1].ID != 1 {
		t.Errorf("expected alarms 3 then 1, got %+v", due)
	}
}

func TestAckKeepsRearmedAlarm(t *testing.T) {
	clock := New(storage.NewMemory())
	_ = clock.Arm(1, base, startPayload())
	due, _ := clock.Due(base)

	// Handler re-armed the same id for next week
	_ = clock.Arm(1, base.AddDate(0, 0, 7), startPayload())
	if err := clock.Ack(due[0]); err != nil {
		t.Fatal(err)
	}
	pending, _ := clock.Pending()
	if len(pending) != 1 || !pending[0].At.Equal(base.AddDate(0, 0, 7)) {
		t.Errorf("re-armed alarm must survive ack, got %+v", pending)
	}

	// Ack of an unchanged alarm deletes it
	if err := clock.Ack(pending[0]); err != nil {
		t.Fatal(err)
	}
	if pending, _ := clock.Pending(); len(pending) != 0 {
		t.Errorf("expected no alarms, got %+v", pending)
	}
}

func TestClockBacksScheduler(t *testing.T) {
	clock := New(storage.NewMemory())
	s := scheduler.New(clock)
	timer := models.DailyTimer{ID: "work", StartHour: 9, EndHour: 17, DaysOfWeek: []int{2, 4}}
	sunday := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

	if err := s.Schedule(timer, sunday); err != nil {
		t.Fatal(err)
	}
	pending, _ := s.Pending()
	if len(pending) != 4 {
		t.Fatalf("expected 4 alarms, got %d", len(pending))
	}
	if err := s.Cancel(timer); err != nil {
		t.Fatal(err)
	}
	if pending, _ := s.Pending(); len(pending) != 0 {
		t.Errorf("expected zero pending, got %d", len(pending))
	}
}

func TestDispatcherTick(t *testing.T) {
	clock := New(storage.NewMemory())
	_ = clock.Arm(1, base, startPayload())
	_ = clock.Arm(constants.QuickTimerAlarmID, base.Add(-time.Second), scheduler.Payload{Kind: scheduler.KindQuick})
	_ = clock.Arm(2, base.Add(time.Hour), startPayload())

	var got []int32
	d := NewDispatcher(clock, time.Second, func(ctx context.Context, a scheduler.Alarm) error {
		got = append(got, a.ID)
		if a.ID == 1 {
			return errors.New("ringer unavailable")
		}
		return nil
	})
	d.now = func() time.Time { return base }

	n, err := d.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(got) != 2 || got[0] != constants.QuickTimerAlarmID || got[1] != 1 {
		t.Errorf("expected quick then alarm 1, got n=%d %v", n, got)
	}
	pending, _ := clock.Pending()
	if len(pending) != 1 || pending[0].ID != 2 {
		t.Errorf("expected only the future alarm left, got %+v", pending)
	}
}

func TestDispatcherLeavesAlarmOnCancel(t *testing.T) {
	clock := New(storage.NewMemory())
	_ = clock.Arm(1, base, startPayload())

	d := NewDispatcher(clock, time.Second, func(ctx context.Context, a scheduler.Alarm) error {
		return context.Canceled
	})
	d.now = func() time.Time { return base }

	if _, err := d.Tick(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if pending, _ := clock.Pending(); len(pending) != 1 {
		t.Error("undelivered alarm must stay armed")
	}
}

func TestDispatcherRunStops(t *testing.T) {
	clock := New(storage.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(clock, 10*time.Millisecond, func(context.Context, scheduler.Alarm) error { return nil })

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
