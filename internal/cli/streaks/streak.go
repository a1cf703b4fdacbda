package streaks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/streak"
)

type StreakCmd struct {
	Show     StreakShowCmd     `cmd:"" help:"Show the current streak." default:"1"`
	Record   StreakRecordCmd   `cmd:"" help:"Record activity for today."`
	FixDates StreakFixDatesCmd `cmd:"" help:"Repair malformed or duplicate entries in the streak log."`
}

type StreakShowCmd struct {
	Days int `help:"Days of history to show." default:"7"`
}

func (c *StreakShowCmd) Run(ctx *cli.Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	current := tracker.CurrentStreak()
	ctx.Printf("Current streak: %d day(s)\n", current)
	if next, _, ok := streak.NextMilestone(current); ok {
		ctx.Printf("Next milestone: %d (%d to go)\n", next, next-current)
	} else {
		ctx.Println("Every milestone reached!")
	}

	log := tracker.Log()
	if !slices.Contains(log, tracker.Today()) {
		ctx.Println("Today is not recorded yet. Run 'dayquote streak record'.")
	}

	if c.Days > 0 {
		ctx.Println()
		ctx.Println(history(log, tracker.Today(), c.Days, loc))
	}
	return nil
}

// history renders one cell per day, oldest first, ending today.
func history(log []string, today string, days int, loc *time.Location) string {
	end, err := time.ParseInLocation(constants.DateFormat, today, loc)
	if err != nil {
		return ""
	}
	var labels, cells []string
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		labels = append(labels, day.Format("Mon")[:2])
		if slices.Contains(log, day.Format(constants.DateFormat)) {
			cells = append(cells, "✓ ")
		} else {
			cells = append(cells, "· ")
		}
	}
	return strings.Join(labels, " ") + "\n" + strings.Join(cells, " ")
}

type StreakRecordCmd struct{}

func (c *StreakRecordCmd) Run(ctx *cli.Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}

	if !tracker.RecordActivity() {
		ctx.Printf("Already recorded today. Streak: %d day(s)\n", tracker.CurrentStreak())
		return nil
	}
	ctx.Printf("✓ Recorded %s. Streak: %d day(s)\n", tracker.Today(), tracker.CurrentStreak())

	// The streak reminder is only scheduled while today is unrecorded
	if _, err := ctx.Reschedule(context.Background(), false); err != nil {
		return fmt.Errorf("recorded, but rescheduling failed: %w", err)
	}
	return nil
}

type StreakFixDatesCmd struct {
	DryRun bool `help:"Show the repaired log without saving it."`
}

func (c *StreakFixDatesCmd) Run(ctx *cli.Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}

	var before, after []string
	if c.DryRun {
		loc, err := ctx.Location()
		if err != nil {
			return err
		}
		before = tracker.Log()
		after = streak.Normalize(before, loc)
	} else {
		ctx.PerformAutomaticBackup()
		before, after = tracker.MigrateAndFixDates()
	}

	for _, e := range before {
		if !slices.Contains(after, e) {
			ctx.Printf("  - %s\n", e)
		}
	}
	for _, e := range after {
		if !slices.Contains(before, e) {
			ctx.Printf("  + %s\n", e)
		}
	}
	ctx.Printf("%d entries before, %d after\n", len(before), len(after))
	if c.DryRun {
		ctx.Println("Dry run: nothing saved.")
		return nil
	}

	// A repaired entry for today cancels the streak reminder
	if _, err := ctx.Reschedule(context.Background(), false); err != nil {
		return fmt.Errorf("repaired, but rescheduling failed: %w", err)
	}
	return nil
}
