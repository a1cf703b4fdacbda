package backups

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dayquote/internal/backup"
	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	var out bytes.Buffer
	ctx := cli.NewContext(store)
	ctx.Out = &out
	t.Cleanup(func() { _ = ctx.Close(context.Background()) })
	return ctx, &out
}

func TestBackupListEmpty(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("output = %q", out)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create error = %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: "+constants.BackupFilePrefix) {
		t.Errorf("create output = %q", out)
	}

	out.Reset()
	ctx.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out.String(), "1 total") || !strings.Contains(out.String(), "2 hours ago") {
		t.Errorf("list output = %q", out)
	}
}

func TestBackupRestoreConfirmation(t *testing.T) {
	ctx, out := setupTestDB(t)
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	ctx.In = strings.NewReader("n\n")
	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(path)}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("output = %q", out)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out := setupTestDB(t)
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Store.SetValue(constants.KeyStreakLog, `["2026-03-10"]`); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupRestoreCmd{BackupFile: path, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "✓ Database restored successfully!") {
		t.Errorf("output = %q", out)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	var log []string
	if _, err := storage.GetJSON(ctx.Store, constants.KeyStreakLog, &log); err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Errorf("restored streak log = %v, want empty", log)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for a missing backup")
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "dayquote.json"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := cli.NewContext(store)
	ctx.Out = &bytes.Buffer{}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for JSON storage")
	}
}
