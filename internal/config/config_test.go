package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("expected exists=false for a missing file")
	}
	if resolved != path {
		t.Errorf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Location.Source != SourceNone {
		t.Errorf("expected source none, got %q", cfg.Location.Source)
	}
	if cfg.MinLocationInterval() != 10*time.Second {
		t.Errorf("expected 10s min interval, got %v", cfg.MinLocationInterval())
	}
	if cfg.Geofence.DefaultRadius != 150 {
		t.Errorf("expected radius 150, got %v", cfg.Geofence.DefaultRadius)
	}
	if !filepath.IsAbs(cfg.Daemon.LockDir) || !filepath.IsAbs(cfg.Log.Dir) {
		t.Errorf("expected expanded directories, got %q and %q", cfg.Daemon.LockDir, cfg.Log.Dir)
	}
	if cfg.Policy().RestoreWhenEmpty {
		t.Error("expected hands-off policy by default")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
timezone = "UTC"

[daemon]
lock_dir = "` + filepath.ToSlash(dir) + `/locks"
alarm_poll_interval = 5
metrics_addr = "127.0.0.1:9310"

[location]
source = "FILE"
file = "` + filepath.ToSlash(dir) + `/fix.json"
min_interval_seconds = 30

[geofence]
restore_when_empty = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}
	if cfg.Location.Source != SourceFile {
		t.Errorf("expected source normalized to file, got %q", cfg.Location.Source)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("expected 5s poll, got %v", cfg.PollInterval())
	}
	if got := cfg.EvaluationLockPath(); got != filepath.Join(dir, "locks", "evaluation.lock") {
		t.Errorf("unexpected evaluation lock path %s", got)
	}
	if !cfg.Policy().RestoreWhenEmpty {
		t.Error("expected restore_when_empty to be read")
	}
	// Omitted keys keep their defaults
	if cfg.Geofence.DefaultRadius != 150 {
		t.Errorf("expected default radius kept, got %v", cfg.Geofence.DefaultRadius)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad timezone", content: `timezone = "Mars/Olympus"`, wantErr: "timezone"},
		{name: "file source without file", content: "[location]\nsource = \"file\"", wantErr: "location.file"},
		{name: "unknown source", content: "[location]\nsource = \"gps\"", wantErr: "location.source"},
		{name: "zero poll", content: "[daemon]\nalarm_poll_interval = 0", wantErr: "alarm_poll_interval"},
		{name: "negative radius", content: "[geofence]\ndefault_radius = -1", wantErr: "default_radius"},
		{name: "bad level", content: "[log]\nlevel = \"loud\"", wantErr: "log.level"},
		{name: "unknown key", content: "colour = \"blue\"", wantErr: "parse config"},
		{name: "bad toml", content: "timezone = ", wantErr: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal([]byte(sampleConfig), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := Default()
	if cfg.Location != def.Location || cfg.Geofence != def.Geofence {
		t.Errorf("sample config drifted from defaults: %+v vs %+v", cfg, def)
	}
	if cfg.Daemon.AlarmPollInterval != def.Daemon.AlarmPollInterval || cfg.Log.Level != def.Log.Level {
		t.Errorf("sample config drifted from defaults: %+v vs %+v", cfg, def)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Errorf("expected the sample to load, exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Daemon.LockDir = filepath.Join(dir, "locks")
	cfg.Log.Dir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{cfg.Daemon.LockDir, cfg.Log.Dir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", d)
		}
	}
}
