package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	ctx, _ := newOutputContext()
	ctx.Store = store
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, dbPath
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if id, ok, err := ctx.Store.GetValue(constants.KeyInstallID); err != nil || !ok || id == "" {
		t.Errorf("install id not created: %q, %v, %v", id, ok, err)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	first, _, _ := ctx.Store.GetValue(constants.KeyInstallID)

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second init failed (should be idempotent): %v", err)
	}
	second, _, _ := ctx.Store.GetValue(constants.KeyInstallID)
	if first != second {
		t.Errorf("install id changed on re-init: %q -> %q", first, second)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	prefs := models.DefaultPreferences()
	prefs.NotificationsPerDay = 7
	if err := storage.SavePreferences(ctx.Store, prefs); err != nil {
		t.Fatalf("failed to save preferences: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	got, err := storage.GetPreferences(ctx.Store)
	if err != nil {
		t.Fatalf("failed to get preferences after force: %v", err)
	}
	if got.NotificationsPerDay != constants.DefaultNotificationsPerDay {
		t.Errorf("NotificationsPerDay = %d, want default %d", got.NotificationsPerDay, constants.DefaultNotificationsPerDay)
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("database file should not exist initially")
	}
	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)
	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "source.json")
	src := storage.NewJSONStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}
	srcID, _, _ := src.GetValue(constants.KeyInstallID)
	if err := src.SetValue(constants.KeyStreakLog, `["2026-03-09","2026-03-10"]`); err != nil {
		t.Fatal(err)
	}
	if err := src.AddTrigger(models.Trigger{ID: "t1", Hour: 9, Minute: 30, Repeats: true, Title: "Quote", Body: "Be kind."}); err != nil {
		t.Fatal(err)
	}
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}

	ctx, _ := setupTestInitDB(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	log, _, err := ctx.Store.GetValue(constants.KeyStreakLog)
	if err != nil || log != `["2026-03-09","2026-03-10"]` {
		t.Errorf("streak log = %q, %v", log, err)
	}
	if id, _, _ := ctx.Store.GetValue(constants.KeyInstallID); id == srcID {
		t.Error("install id should not be copied from the source")
	}
	triggers, err := ctx.Store.GetAllTriggers()
	if err != nil {
		t.Fatal(err)
	}
	if len(triggers) != 1 || triggers[0].ID != "t1" {
		t.Errorf("triggers = %+v", triggers)
	}
}
