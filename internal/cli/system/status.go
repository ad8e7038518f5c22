package system

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/tui"
	"github.com/julianstephens/automute/internal/tui/components/alarms"
)

type StatusCmd struct {
	JSON bool `help:"Print machine-readable JSON."`
}

type statusJSON struct {
	Now         time.Time  `json:"now"`
	QuickActive bool       `json:"quickTimerActive"`
	QuickEnd    *time.Time `json:"quickTimerEnd,omitempty"`
	Ringer      string     `json:"ringerMode,omitempty"`
	Filter      string     `json:"interruptionFilter,omitempty"`
	DeviceError string     `json:"deviceError,omitempty"`
	MutedByApp  bool       `json:"mutedByApp"`
	ActiveTimer string     `json:"activeTimer,omitempty"`
	Locations   int        `json:"locations"`
	Pending     int        `json:"pendingAlarms"`
	NextAlarm   *time.Time `json:"nextAlarm,omitempty"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	st, err := cli.CollectStatus(ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return printStatusJSON(ctx, st)
	}

	ctx.Printf("Time:          %s\n", st.Now.Format("Mon 2006-01-02 15:04"))
	if st.DeviceErr != nil {
		ctx.Printf("Device:        unreadable (%v)\n", st.DeviceErr)
	} else {
		ctx.Printf("Ringer:        %s\n", st.Ringer)
		ctx.Printf("DND filter:    %s\n", st.Filter)
	}
	if st.MutedByApp {
		ctx.Println("Muted by:      automute (geofence)")
	}

	if st.Quick.Active {
		ctx.Printf("Quick timer:   ends %s (%s)\n", st.Quick.EndTime.Format("15:04"), humanize.RelTime(st.Quick.EndTime, st.Now, "ago", "from now"))
	} else {
		ctx.Println("Quick timer:   off")
	}
	if st.ActiveTimer != nil {
		ctx.Printf("Daily timer:   %s-%s active (%s)\n", st.ActiveTimer.FormatStart(), st.ActiveTimer.FormatEnd(), st.ActiveTimer.ID)
	} else {
		ctx.Println("Daily timer:   none active")
	}
	ctx.Printf("Locations:     %d saved\n", len(st.Locations))

	if len(st.Pending) == 0 {
		ctx.Println("Next alarm:    none armed")
		return nil
	}
	next := st.Pending[0]
	ctx.Printf("Next alarm:    %s %s %s (%s), %d armed\n",
		alarms.Label(next.Payload), alarms.Owner(next.Payload),
		next.At.In(st.Now.Location()).Format("Mon 15:04"),
		humanize.RelTime(next.At, st.Now, "ago", "from now"),
		len(st.Pending))
	return nil
}

func printStatusJSON(ctx *cli.Context, st tui.Status) error {
	out := statusJSON{
		Now:         st.Now,
		QuickActive: st.Quick.Active,
		Ringer:      string(st.Ringer),
		Filter:      string(st.Filter),
		MutedByApp:  st.MutedByApp,
		Locations:   len(st.Locations),
		Pending:     len(st.Pending),
	}
	if st.Quick.Active {
		end := st.Quick.EndTime
		out.QuickEnd = &end
	}
	if st.DeviceErr != nil {
		out.DeviceError = st.DeviceErr.Error()
	}
	if st.ActiveTimer != nil {
		out.ActiveTimer = st.ActiveTimer.ID
	}
	if len(st.Pending) > 0 {
		at := st.Pending[0].At
		out.NextAlarm = &at
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
