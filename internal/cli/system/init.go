package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/config"
	"github.com/julianstephens/automute/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Force && !storage.IsPostgresURL(dbPath) {
		if _, err := os.Stat(dbPath); err == nil {
			// Database exists, close it first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized automute storage at: %s\n", dbPath)

	if ctx.ConfigPath == "" {
		return nil
	}
	if _, err := os.Stat(ctx.ConfigPath); os.IsNotExist(err) {
		if err := config.CreateSample(ctx.ConfigPath); err != nil {
			return err
		}
		ctx.Printf("Wrote sample configuration to: %s\n", ctx.ConfigPath)
	}
	return nil
}
