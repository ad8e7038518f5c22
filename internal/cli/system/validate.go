package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/validation"
)

// ErrConflicts is returned when validation finds problems, so scripts see a non-zero exit.
var ErrConflicts = errors.New("conflicts detected")

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	repo := ctx.Repo()
	locations, err := repo.Locations()
	if err != nil {
		return fmt.Errorf("failed to get locations: %w", err)
	}
	timers, err := repo.Timers()
	if err != nil {
		return fmt.Errorf("failed to get timers: %w", err)
	}

	result := validation.New().Validate(locations, timers)
	ctx.Println(strings.TrimSuffix(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return ErrConflicts
	}
	return nil
}
