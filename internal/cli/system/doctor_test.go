package system

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	// Missing backups, undetermined permission and an empty schedule are warnings
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed on healthy database: %v\n%s", err, out)
	}
	for _, want := range []string{
		"✓ Database reachable: OK",
		"✓ Migrations complete: OK",
		"⚠ Backups present: WARNING",
		"⚠ Notification permission: WARNING",
		"✓ Delivery channel: OK",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("UPDATE schema_version SET version = 9999"); err != nil {
		t.Fatalf("failed to corrupt schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail with a schema newer than supported")
	}
	if !strings.Contains(out.String(), "❌ Schema version: FAIL") {
		t.Errorf("output:\n%s", out)
	}
}

func TestDoctorCmd_InvalidSettings(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	if err := ctx.Store.SetValue(constants.KeyPreferences, `{"notifications_per_day":3,"start_hour":20,"end_hour":8,"selected_categories":["stoisism"]}`); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail with invalid preferences")
	}
	if !strings.Contains(out.String(), "❌ Settings: FAIL") {
		t.Errorf("output:\n%s", out)
	}
}

func TestDoctorCmd_MalformedStreakLog(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	if err := ctx.Store.SetValue(constants.KeyStreakLog, `["2026-03-10","March 9, 2026","2026-03-10"]`); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail with a malformed streak log")
	}
	if !strings.Contains(out.String(), "dayquote streak fix-dates") {
		t.Errorf("output should suggest the repair command:\n%s", out)
	}
}

func TestDoctorCmd_UnreachableChannel(t *testing.T) {
	ctx, out, sender := setupTestContext(t)
	sender.probeErr = errors.New("tray not running")

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("unreachable channel is a warning: %v", err)
	}
	if !strings.Contains(out.String(), "tray not running") {
		t.Errorf("output:\n%s", out)
	}
}
