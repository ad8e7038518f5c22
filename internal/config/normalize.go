package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}

	var err error
	if strings.TrimSpace(c.Daemon.LockDir) == "" {
		c.Daemon.LockDir = defaultLockDir
	}
	if c.Daemon.LockDir, err = expandPath(c.Daemon.LockDir); err != nil {
		return fmt.Errorf("daemon.lock_dir: %w", err)
	}
	c.Daemon.MetricsAddr = strings.TrimSpace(c.Daemon.MetricsAddr)

	c.Location.Source = strings.ToLower(strings.TrimSpace(c.Location.Source))
	if c.Location.Source == "" {
		c.Location.Source = defaultLocationSource
	}
	if c.Location.File, err = expandPath(strings.TrimSpace(c.Location.File)); err != nil {
		return fmt.Errorf("location.file: %w", err)
	}

	if strings.TrimSpace(c.Log.Dir) == "" {
		c.Log.Dir = defaultLogDir
	}
	if c.Log.Dir, err = expandPath(c.Log.Dir); err != nil {
		return fmt.Errorf("log.dir: %w", err)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	return nil
}
