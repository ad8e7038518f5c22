package system

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/automute/internal/cli"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpState DebugDumpStateCmd `cmd:"" help:"Dump persisted keys as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"config": ctx.ConfigPath,
	}
	return printJSON(ctx, output)
}

type DebugDumpStateCmd struct {
	Prefix string `arg:"" optional:"" help:"Only dump keys with this prefix."`
}

type kvEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (cmd *DebugDumpStateCmd) Run(ctx *cli.Context) error {
	rows, err := ctx.Store.List(cmd.Prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]kvEntry, 0, len(keys))
	for _, k := range keys {
		raw := strings.TrimSpace(rows[k])
		value := json.RawMessage(raw)
		if !json.Valid(value) {
			quoted, _ := json.Marshal(rows[k])
			value = quoted
		}
		entries = append(entries, kvEntry{Key: k, Value: value})
	}
	return printJSON(ctx, entries)
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
