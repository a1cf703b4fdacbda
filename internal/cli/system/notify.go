package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/dispatch"
)

// NotifyCmd runs one dispatch pass. Cron or a launch agent can call it every
// minute when the daemon is not running.
type NotifyCmd struct {
	DryRun bool `help:"List the notifications that are due instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if c.DryRun {
		return c.dryRun(ctx)
	}

	d, err := ctx.Dispatcher()
	if err != nil {
		return err
	}
	report, err := d.Run(context.Background())
	for _, t := range report.Delivered {
		ctx.Printf("Delivered %s notification scheduled for %s\n", t.Kind(), t.At())
	}
	if report.Skipped > 0 {
		ctx.Printf("Skipped %d streak reminder(s), today is already recorded\n", report.Skipped)
	}
	if err != nil {
		return fmt.Errorf("failed to deliver notifications: %w", err)
	}
	return nil
}

func (c *NotifyCmd) dryRun(ctx *cli.Context) error {
	delivery, err := ctx.Delivery()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	triggers, err := ctx.Store.GetAllTriggers()
	if err != nil {
		return fmt.Errorf("failed to get triggers: %w", err)
	}

	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	due := dispatch.Due(triggers, now.In(loc), time.Duration(delivery.GracePeriodMin)*time.Minute)
	if len(due) == 0 {
		ctx.Println("No notifications due.")
		return nil
	}
	for _, t := range due {
		ctx.Printf("[DryRun] %s %s: %s\n", t.At(), t.Title, t.Body)
	}
	return nil
}
