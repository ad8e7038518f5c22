package backups

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/automute/internal/backup"
	"github.com/julianstephens/automute/internal/cli/clitest"
	"github.com/julianstephens/automute/internal/models"
	"github.com/julianstephens/automute/internal/orchestrator"
	"github.com/julianstephens/automute/internal/repository"
	"github.com/julianstephens/automute/internal/storage"
	"github.com/julianstephens/automute/internal/storage/sqlite"
)

// sqliteEnv swaps the in-memory store for a file so backups have something to copy.
func sqliteEnv(t *testing.T) (*clitest.Env, string) {
	t.Helper()
	env := clitest.New(t)
	path := filepath.Join(t.TempDir(), "automute.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	env.Ctx.Store = store
	return env, path
}

func addLocation(t *testing.T, env *clitest.Env, name string) {
	t.Helper()
	loc := models.SavedLocation{Name: name, Latitude: 10, Longitude: 10, Radius: 100, TargetRingerMode: models.RingerSilent}
	if _, err := env.Ctx.Evaluate(orchestrator.LocationAdded{Location: loc}); err != nil {
		t.Fatal(err)
	}
}

func TestBackupCreateListRestore(t *testing.T) {
	env, dbPath := sqliteEnv(t)
	addLocation(t, env, "Office")

	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Backup created: "+backup.FilePrefix) {
		t.Fatalf("unexpected create output: %q", out)
	}
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "✓ Backup created:"))

	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, name) || !strings.Contains(out, "1 total") {
		t.Errorf("list missing backup %q:\n%s", name, out)
	}

	if _, err := env.Ctx.Evaluate(orchestrator.LocationDeleted{Name: "Office"}); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupRestoreCmd{BackupFile: name, Yes: true}).Run(env.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	out = env.Output()
	if !strings.Contains(out, "Database restored successfully") || !strings.Contains(out, "Previous database saved as") {
		t.Errorf("unexpected restore output:\n%s", out)
	}

	reopened := sqlite.NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	locs, err := repository.New(reopened).Locations()
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 1 || locs[0].Name != "Office" {
		t.Errorf("expected restored location, got %+v", locs)
	}
}

func TestBackupRestoreDeclined(t *testing.T) {
	env, _ := sqliteEnv(t)
	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(env.Output()), "✓ Backup created:"))

	env.Input("no\n")
	if err := (&BackupRestoreCmd{BackupFile: name}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "Restore cancelled.") {
		t.Errorf("expected cancellation, got:\n%s", out)
	}
	if _, _, err := env.Ctx.Store.Get("locations"); err != nil {
		t.Errorf("store should stay open after a declined restore: %v", err)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	env, _ := sqliteEnv(t)
	err := (&BackupRestoreCmd{BackupFile: "automute-20000101-000000.db", Yes: true}).Run(env.Ctx)
	if err == nil || !strings.Contains(err.Error(), "backup file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestBackupListEmpty(t *testing.T) {
	env, dbPath := sqliteEnv(t)
	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	if !strings.Contains(out, "No backups found.") || !strings.Contains(out, filepath.Join(filepath.Dir(dbPath), backup.BackupDirName)) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

type postgresStore struct {
	*storage.Memory
}

func (postgresStore) GetConfigPath() string { return "postgresql://db.internal:5432/automute" }

func TestBackupRejectsPostgres(t *testing.T) {
	env := clitest.New(t)
	env.Ctx.Store = postgresStore{storage.NewMemory()}

	for name, run := range map[string]func() error{
		"create":  func() error { return (&BackupCreateCmd{}).Run(env.Ctx) },
		"list":    func() error { return (&BackupListCmd{}).Run(env.Ctx) },
		"restore": func() error { return (&BackupRestoreCmd{BackupFile: "x.db", Yes: true}).Run(env.Ctx) },
	} {
		if err := run(); !errors.Is(err, errPostgresBackup) {
			t.Errorf("%s: expected postgres rejection, got %v", name, err)
		}
	}
}
