package schedules

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/notifier"
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
	ctx.Sender = notifier.Stdout{W: &bytes.Buffer{}}
	ctx.Now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local) }
	t.Cleanup(func() { _ = ctx.Close(context.Background()) })
	return ctx, &out
}

func TestScheduleListEmpty(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&ScheduleListCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No notifications scheduled.") {
		t.Errorf("output = %q", out)
	}
}

func TestScheduleApplyWithoutPermission(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&ScheduleApplyCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "permission not granted") {
		t.Errorf("output = %q", out)
	}
}

func TestScheduleApplyAndList(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := storage.SetJSON(ctx.Store, constants.KeyNotificationPermission, constants.PermissionGranted); err != nil {
		t.Fatal(err)
	}

	if err := (&ScheduleApplyCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "✓ Scheduled 4 notification(s)") {
		t.Errorf("output = %q", out)
	}
	if got := strings.Count(out.String(), string(constants.TriggerKindQuote)+"   "); got != 3 {
		t.Errorf("listed %d quote notifications, want 3:\n%s", got, out)
	}

	out.Reset()
	if err := (&ScheduleListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out.String(), string(constants.TriggerKindStreakReminder)) {
		t.Errorf("list output = %q", out)
	}
}

func TestScheduleApplyClampsStoredCount(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := storage.SetJSON(ctx.Store, constants.KeyNotificationPermission, constants.PermissionGranted); err != nil {
		t.Fatal(err)
	}
	prefs := models.DefaultPreferences()
	prefs.NotificationsPerDay = 100000000
	prefs.StreakReminderEnabled = false
	if err := storage.SavePreferences(ctx.Store, prefs); err != nil {
		t.Fatal(err)
	}

	if err := (&ScheduleApplyCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	triggers, err := ctx.Store.GetAllTriggers()
	if err != nil {
		t.Fatal(err)
	}
	if len(triggers) != constants.MaxNotificationsPerDay {
		t.Errorf("scheduled %d triggers, want %d", len(triggers), constants.MaxNotificationsPerDay)
	}
}
