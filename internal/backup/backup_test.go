package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

// setupStore creates an initialised store holding a one-day streak log.
func setupStore(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayquote.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.SetValue(constants.KeyStreakLog, `["2026-03-09"]`); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return dbPath
}

func readStreakLog(t *testing.T, dbPath string) string {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer store.Close()
	v, _, err := store.GetValue(constants.KeyStreakLog)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	return v
}

func writeStreakLog(t *testing.T, dbPath, value string) {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer store.Close()
	if err := store.SetValue(constants.KeyStreakLog, value); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
}

// steppingClock advances by one minute per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Minute)
		return t
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to %s", backupPath)
	}
	if got := readStreakLog(t, backupPath); got != `["2026-03-09"]` {
		t.Errorf("backup streak log = %q", got)
	}
}

func TestCreateBackupWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when the database does not exist")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local))

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
	oldestKept := time.Date(2026, 3, 1, 8, 5, 0, 0, time.Local)
	if !backups[len(backups)-1].Timestamp.Equal(oldestKept) {
		t.Errorf("oldest kept = %v, want %v", backups[len(backups)-1].Timestamp, oldestKept)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil || len(backups) != 0 {
		t.Fatalf("ListBackups() = %v, %v; want empty", backups, err)
	}

	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	for _, name := range []string{"notes.txt", constants.BackupFilePrefix + "garbage.db", constants.BackupFilePrefix + "20260301-080000x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Size == 0 || backups[0].HumanSize() == "" {
		t.Errorf("backup size missing: %+v", backups[0])
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"dayquote-20260301-080000.db", true},
		{"dayquote-20260301-080000-3.db", true},
		{"dayquote-20260301-0800.db", false},
		{"dayquote-20260301-080000.sqlite", false},
		{"other-20260301-080000.db", false},
		{"dayquote-20260301-080000x3.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := parseBackupName(tt.name)
			if ok != tt.ok {
				t.Fatalf("parseBackupName() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !ts.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)) {
				t.Errorf("timestamp = %v", ts)
			}
		})
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		backupPath, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		filename := filepath.Base(backupPath)
		if paths[filename] {
			t.Errorf("duplicate backup filename: %s", filename)
		}
		paths[filename] = true
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	writeStreakLog(t, dbPath, `["2026-03-09","2026-03-10"]`)

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if safety == "" {
		t.Fatal("expected a pre-restore backup path")
	}
	if got := readStreakLog(t, dbPath); got != `["2026-03-09"]` {
		t.Errorf("restored streak log = %q", got)
	}
	if got := readStreakLog(t, safety); got != `["2026-03-09","2026-03-10"]` {
		t.Errorf("pre-restore backup streak log = %q", got)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups after restore, got %d", len(backups))
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.db")
	if err := os.WriteFile(invalid, []byte("not a database at all, definitely not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(invalid); err == nil {
		t.Error("expected error for corrupt backup")
	}
	if got := readStreakLog(t, dbPath); got != `["2026-03-09"]` {
		t.Errorf("database changed by failed restore: %q", got)
	}
}

func TestBackupAge(t *testing.T) {
	b := BackupInfo{Path: "/tmp/backups/dayquote-20260310-080000.db", Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	if got := b.Age(time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)); got != "3 hours ago" {
		t.Errorf("Age() = %q", got)
	}
	if got := b.Name(); got != "dayquote-20260310-080000.db" {
		t.Errorf("Name() = %q", got)
	}
}
