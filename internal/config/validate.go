package config

import (
	"errors"
	"fmt"

	"github.com/julianstephens/automute/internal/utils"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := utils.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLocation(); err != nil {
		return err
	}
	if c.Geofence.DefaultRadius <= 0 {
		return errors.New("geofence.default_radius must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.AlarmPollInterval <= 0 {
		return errors.New("daemon.alarm_poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLocation() error {
	switch c.Location.Source {
	case SourceStdin, SourceNone:
	case SourceFile:
		if c.Location.File == "" {
			return errors.New("location.file is required when location.source is \"file\"")
		}
	default:
		return fmt.Errorf("location.source must be stdin, file or none, got %q", c.Location.Source)
	}
	if c.Location.MinIntervalSeconds < 0 {
		return errors.New("location.min_interval_seconds cannot be negative")
	}
	return nil
}
