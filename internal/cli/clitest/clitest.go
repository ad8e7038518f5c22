// Package clitest builds command contexts over an in-memory store for tests.
package clitest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/automute/internal/cli"
	"github.com/julianstephens/automute/internal/config"
	"github.com/julianstephens/automute/internal/storage"
)

// Monday is a fixed weekday morning, 2024-06-03 08:00 UTC.
var Monday = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type Env struct {
	Ctx   *cli.Context
	Store *storage.Memory
	Out   *bytes.Buffer
	// Now is the instant commands see; tests may move it
	Now time.Time
}

// New returns an environment whose clock starts at Monday and whose locks
// live in a temp directory.
func New(t *testing.T) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.Daemon.LockDir = t.TempDir()
	cfg.Log.Dir = t.TempDir()

	env := &Env{
		Store: storage.NewMemory(),
		Out:   &bytes.Buffer{},
		Now:   Monday,
	}
	env.Ctx = &cli.Context{
		Store:  env.Store,
		Config: &cfg,
		In:     strings.NewReader(""),
		Out:    env.Out,
		Now:    func() time.Time { return env.Now },
	}
	return env
}

// Input sets what the next confirmation prompt reads.
func (e *Env) Input(s string) {
	e.Ctx.In = strings.NewReader(s)
}

// Output returns and clears everything written so far.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
