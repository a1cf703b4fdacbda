package system

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/notifier"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

// testNow is a Tuesday morning in local time.
var testNow = time.Date(2026, 3, 10, 9, 5, 0, 0, time.Local)

type recordingSender struct {
	mu       sync.Mutex
	sent     []notifier.Message
	probeErr error
}

func (s *recordingSender) Send(_ context.Context, msg notifier.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) Probe(context.Context) error { return s.probeErr }

func (s *recordingSender) Sent() []notifier.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifier.Message(nil), s.sent...)
}

// setupTestContext returns a context over an initialised SQLite store with a
// recording sender and a fixed clock.
func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, *recordingSender) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	var out bytes.Buffer
	sender := &recordingSender{}
	ctx := cli.NewContext(store)
	ctx.Out = &out
	ctx.Sender = sender
	ctx.Now = func() time.Time { return testNow }

	t.Cleanup(func() {
		if err := ctx.Close(context.Background()); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, &out, sender
}

func grantPermission(t *testing.T, ctx *cli.Context) {
	t.Helper()
	if err := storage.SetJSON(ctx.Store, constants.KeyNotificationPermission, constants.PermissionGranted); err != nil {
		t.Fatalf("failed to grant permission: %v", err)
	}
}

func addTrigger(t *testing.T, ctx *cli.Context, id string, hour, minute int, kind constants.TriggerKind) {
	t.Helper()
	err := ctx.Store.AddTrigger(models.Trigger{
		ID:        id,
		Hour:      hour,
		Minute:    minute,
		Repeats:   true,
		Title:     "Title " + id,
		Body:      "Body " + id,
		Data:      map[string]any{"kind": string(kind)},
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("failed to add trigger: %v", err)
	}
}
