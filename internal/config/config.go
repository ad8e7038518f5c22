// Package config loads the automute TOML configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/automute/internal/constants"
	"github.com/julianstephens/automute/internal/orchestrator"
)

//go:embed sample_config.toml
var sampleConfig string

// Location source names.
const (
	SourceStdin = "stdin"
	SourceFile  = "file"
	SourceNone  = "none"
)

// Daemon contains settings for "automute run".
type Daemon struct {
	LockDir           string `toml:"lock_dir"`
	AlarmPollInterval int    `toml:"alarm_poll_interval"`
	MetricsAddr       string `toml:"metrics_addr"`
}

// Location selects where position fixes come from.
type Location struct {
	Source             string `toml:"source"`
	File               string `toml:"file"`
	MinIntervalSeconds int    `toml:"min_interval_seconds"`
}

// Geofence holds geofence defaults and the no-locations policy.
type Geofence struct {
	DefaultRadius    float64 `toml:"default_radius"`
	RestoreWhenEmpty bool    `toml:"restore_when_empty"`
}

// Log configures the rotating log file.
type Log struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
	Debug bool   `toml:"debug"`
}

// Config encapsulates all configuration values for automute.
type Config struct {
	Timezone string   `toml:"timezone"`
	Daemon   Daemon   `toml:"daemon"`
	Location Location `toml:"location"`
	Geofence Geofence `toml:"geofence"`
	Log      Log      `toml:"log"`
}

// Load parses and validates a configuration file. A missing file yields the
// defaults; exists reports whether one was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = constants.DefaultConfigFile
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the lock and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Daemon.LockDir, c.Log.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) DaemonLockPath() string {
	return filepath.Join(c.Daemon.LockDir, constants.DaemonLockFileName)
}

func (c *Config) EvaluationLockPath() string {
	return filepath.Join(c.Daemon.LockDir, constants.EvaluationLockFileName)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Daemon.AlarmPollInterval) * time.Second
}

func (c *Config) MinLocationInterval() time.Duration {
	return time.Duration(c.Location.MinIntervalSeconds) * time.Second
}

// Policy returns the orchestrator policy the file selects.
func (c *Config) Policy() orchestrator.Policy {
	return orchestrator.Policy{RestoreWhenEmpty: c.Geofence.RestoreWhenEmpty}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
