package locations

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/constants"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
)

type LocationAddCmd struct {
	Name      string  `arg:"" help:"Unique location name."`
	Latitude  float64 `help:"Latitude in degrees." required:""`
	Longitude float64 `help:"Longitude in degrees." required:""`
	Radius    float64 `help:"Geofence radius in meters (default from config)."`
	Mode      string  `help:"Ringer mode inside the geofence (silent or vibrate)." default:"silent"`
}

func (c *LocationAddCmd) Run(ctx *cli.Context) error {
	mode, err := models.ParseRingerMode(c.Mode)
	if err != nil {
		return err
	}
	radius := c.Radius
	if radius == 0 {
		radius = constants.DefaultRadiusMeters
		if ctx.Config != nil {
			radius = ctx.Config.Geofence.DefaultRadius
		}
	}

	loc := models.SavedLocation{
		Name:             strings.TrimSpace(c.Name),
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Radius:           radius,
		TargetRingerMode: mode,
	}
	if err := loc.Validate(); err != nil {
		return err
	}

	if _, err := ctx.Evaluate(orchestrator.LocationAdded{Location: loc}); err != nil {
		return fmt.Errorf("failed to add location: %w", err)
	}
	ctx.Printf("✓ Location added: %s (%s within %sm)\n", loc.Name, loc.TargetRingerMode, humanize.Ftoa(loc.Radius))
	return nil
}

type LocationListCmd struct{}

func (c *LocationListCmd) Run(ctx *cli.Context) error {
	locations, err := ctx.Repo().Locations()
	if err != nil {
		return fmt.Errorf("failed to get locations: %w", err)
	}
	if len(locations) == 0 {
		ctx.Println("No locations saved.")
		return nil
	}

	rows := make([][]string, 0, len(locations))
	for i, loc := range locations {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			loc.Name,
			fmt.Sprintf("%.6f", loc.Latitude),
			fmt.Sprintf("%.6f", loc.Longitude),
			humanize.Ftoa(loc.Radius) + " m",
			string(loc.TargetRingerMode),
		})
	}
	ctx.RenderTable([]string{"#", "Name", "Latitude", "Longitude", "Radius", "Mode"}, rows, 1, 3, 4, 5)
	return nil
}

type LocationDeleteCmd struct {
	Name string `arg:"" help:"Name of the location to delete."`
}

func (c *LocationDeleteCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Evaluate(orchestrator.LocationDeleted{Name: c.Name})
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	ctx.Printf("✓ Location deleted: %s\n", c.Name)
	if len(res.Effects) > 0 {
		ctx.PrintResult(res)
	}
	return nil
}

type LocationClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *LocationClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm("Delete all saved locations?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	res, err := ctx.Evaluate(orchestrator.AllLocationsEmptied{})
	if err != nil {
		return fmt.Errorf("failed to clear locations: %w", err)
	}
	ctx.Println("✓ All locations deleted")
	if len(res.Effects) > 0 {
		ctx.PrintResult(res)
	}
	return nil
}
