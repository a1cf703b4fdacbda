package system

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/dayquote/internal/backup"
	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
	"github.com/julianstephens/dayquote/internal/streak"
	"github.com/julianstephens/dayquote/internal/utils"
)

const probeTimeout = 10 * time.Second

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Streak log", needsDB: true, run: checkStreakLog},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Notification permission", needsDB: true, warnOnly: true, run: checkPermission},
	{name: "Delivery channel", needsDB: true, warnOnly: true, run: checkDelivery},
	{name: "Schedule", needsDB: true, warnOnly: true, run: checkSchedule},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	if _, _, err := ctx.Store.GetValue(constants.KeyInstallID); err != nil {
		return fmt.Errorf("failed to read values: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON store has no schema
		return nil
	}
	_, err := m.MigrationStatus()
	return err
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	st, err := m.MigrationStatus()
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'dayquote migrate')", st.Current, st.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'dayquote backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	prefs, err := ctx.Preferences()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	delivery, err := ctx.Delivery()
	if err != nil {
		return fmt.Errorf("failed to read delivery settings: %w", err)
	}
	v, err := ctx.Validator()
	if err != nil {
		return err
	}
	if res := v.ValidatePreferences(prefs); res.HasConflicts() {
		return res.Err()
	}
	if res := v.ValidateDelivery(delivery); res.HasConflicts() {
		return res.Err()
	}
	return nil
}

func checkStreakLog(ctx *cli.Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	log := tracker.Log()
	if fixed := streak.Normalize(log, loc); !slices.Equal(fixed, log) {
		return fmt.Errorf("streak log needs repair: %d entries, %d after normalizing (run 'dayquote streak fix-dates')", len(log), len(fixed))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	delivery, err := ctx.Delivery()
	if err != nil {
		// Reported by the settings check
		return nil
	}
	if !utils.ValidateTimezone(delivery.Timezone) {
		return fmt.Errorf("unknown timezone %q", delivery.Timezone)
	}
	return nil
}

func checkPermission(ctx *cli.Context) error {
	p, err := ctx.Platform()
	if err != nil {
		return err
	}
	status, err := p.PermissionStatus(context.Background())
	if err != nil {
		return err
	}
	if status != constants.PermissionGranted {
		return fmt.Errorf("permission is %s - run 'dayquote permission request'", status)
	}
	return nil
}

func checkDelivery(ctx *cli.Context) error {
	delivery, err := ctx.Delivery()
	if err != nil {
		return err
	}
	sender, err := ctx.SenderFor(delivery)
	if err != nil {
		return err
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := sender.Probe(probeCtx); err != nil {
		return fmt.Errorf("%s channel unreachable: %w", delivery.Channel, err)
	}
	return nil
}

func checkSchedule(ctx *cli.Context) error {
	prefs, err := ctx.Preferences()
	if err != nil {
		return err
	}
	if !prefs.NotificationsEnabled {
		return nil
	}
	triggers, err := ctx.Store.GetAllTriggers()
	if err != nil {
		return err
	}
	quotes := 0
	for _, t := range triggers {
		if t.Kind() == constants.TriggerKindQuote {
			quotes++
		}
	}
	if quotes != prefs.NotificationsPerDay {
		return fmt.Errorf("%d quote notifications scheduled, preferences ask for %d (run 'dayquote schedule apply')", quotes, prefs.NotificationsPerDay)
	}
	return nil
}
