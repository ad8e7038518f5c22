package system

import (
	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
)

// SampleCmd feeds one position fix to the orchestrator, as the location source would.
type SampleCmd struct {
	Latitude  float64 `arg:"" help:"Latitude in degrees."`
	Longitude float64 `arg:"" help:"Longitude in degrees."`
}

func (c *SampleCmd) Run(ctx *cli.Context) error {
	sample := models.LocationSample{Latitude: c.Latitude, Longitude: c.Longitude}
	if err := sample.Validate(); err != nil {
		return err
	}

	res, err := ctx.Evaluate(orchestrator.LocationSample{Sample: sample})
	if err != nil {
		return err
	}
	ctx.Printf("Sample %.6f,%.6f: %s\n", c.Latitude, c.Longitude, res.Outcome)
	ctx.PrintResult(res)
	return nil
}
