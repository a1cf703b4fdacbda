package status

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/notifier"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

var testNow = time.Date(2026, 3, 10, 9, 5, 0, 0, time.Local)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	var out bytes.Buffer
	ctx := cli.NewContext(store)
	ctx.Out = &out
	ctx.Sender = notifier.Stdout{W: &bytes.Buffer{}}
	ctx.Now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = ctx.Close(context.Background()) })
	return ctx, &out
}

func TestBackendSnapshot(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.SetValue(constants.KeyStreakLog, `["2026-03-08","2026-03-09"]`); err != nil {
		t.Fatal(err)
	}

	b, err := newBackend(ctx)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}
	snap, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Streak != 2 {
		t.Errorf("Streak = %d, want 2", snap.Streak)
	}
	if snap.TodayRecorded {
		t.Error("TodayRecorded = true before recording")
	}
	if want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local); !snap.LastActive.Equal(want) {
		t.Errorf("LastActive = %v, want %v", snap.LastActive, want)
	}
	if snap.Permission != constants.PermissionUndetermined {
		t.Errorf("Permission = %q", snap.Permission)
	}

	recorded, err := b.RecordActivity()
	if err != nil || !recorded {
		t.Fatalf("RecordActivity() = %v, %v", recorded, err)
	}
	snap, _ = b.Snapshot()
	if !snap.TodayRecorded || snap.Streak != 3 {
		t.Errorf("after record: TodayRecorded = %v, Streak = %d", snap.TodayRecorded, snap.Streak)
	}
}

func TestBackendReschedule(t *testing.T) {
	ctx, _ := setupTestContext(t)
	b, err := newBackend(ctx)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}
	if _, err := b.platform.RequestPermission(context.Background()); err != nil {
		t.Fatal(err)
	}

	res, err := b.Reschedule(context.Background())
	if err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	snap, _ := b.Snapshot()
	if len(snap.Triggers) != len(res.TriggerIDs) || len(res.TriggerIDs) == 0 {
		t.Errorf("snapshot has %d triggers, reschedule registered %d", len(snap.Triggers), len(res.TriggerIDs))
	}
}

func TestStatusCmdOneShot(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &StatusCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Nothing scheduled.") {
		t.Errorf("output = %q", out)
	}
}

func TestLastActive(t *testing.T) {
	if got := lastActive(nil, time.Local); !got.IsZero() {
		t.Errorf("lastActive(nil, time.Local) = %v", got)
	}
	got := lastActive([]string{"2026-03-01", "garbage", "2026-03-05", "2026-02-28"}, time.Local)
	if want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("lastActive() = %v, want %v", got, want)
	}
}
