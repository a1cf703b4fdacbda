package schedules

import (
	"context"
	"fmt"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/models"
)

type ScheduleCmd struct {
	List  ScheduleListCmd  `cmd:"" help:"List scheduled notifications." default:"1"`
	Apply ScheduleApplyCmd `cmd:"" help:"Rebuild today's schedule from the current preferences."`
}

type ScheduleListCmd struct{}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Platform()
	if err != nil {
		return err
	}
	triggers, err := p.ListAllScheduled(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list scheduled notifications: %w", err)
	}
	printTriggers(ctx, triggers)
	return nil
}

type ScheduleApplyCmd struct{}

func (c *ScheduleApplyCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Reschedule(context.Background(), true)
	if err != nil {
		return err
	}
	switch {
	case res.Dropped:
		ctx.Println("Another reschedule is in progress; try again shortly.")
		return nil
	case res.Skipped != "":
		ctx.Printf("Cleared the schedule, nothing registered: %s\n", res.Skipped)
		return nil
	}
	ctx.Printf("✓ Scheduled %d notification(s)\n\n", len(res.TriggerIDs))
	printTriggers(ctx, res.Scheduled)
	return nil
}

func printTriggers(ctx *cli.Context, triggers []models.Trigger) {
	if len(triggers) == 0 {
		ctx.Println("No notifications scheduled.")
		return
	}
	for _, t := range triggers {
		fired := ""
		if t.LastFiredDay != "" {
			fired = "  (last sent " + t.LastFiredDay + ")"
		}
		ctx.Printf("  %s  %-16s %s%s\n", t.At(), t.Kind(), t.Body, fired)
	}
}
