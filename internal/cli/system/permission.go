package system

import (
	"context"

	"github.com/julianstephens/dayquote/internal/cli"
)

type PermissionCmd struct {
	Request PermissionRequestCmd `cmd:"" help:"Probe the delivery channel and grant or deny notification permission." default:"1"`
	Status  PermissionStatusCmd  `cmd:"" help:"Show the stored notification permission."`
}

type PermissionRequestCmd struct{}

func (c *PermissionRequestCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Platform()
	if err != nil {
		return err
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	granted, err := p.RequestPermission(probeCtx)
	if err != nil {
		return err
	}
	if !granted {
		ctx.Println("❌ Permission denied: the delivery channel could not be reached.")
		ctx.Println("   Check 'dayquote doctor' for details, then request again.")
		return nil
	}

	ctx.Println("✓ Permission granted")
	res, err := ctx.Reschedule(context.Background(), false)
	if err != nil {
		return err
	}
	if res.Skipped != "" {
		ctx.Printf("Nothing scheduled: %s\n", res.Skipped)
		return nil
	}
	ctx.Printf("Scheduled %d notification(s)\n", len(res.TriggerIDs))
	return nil
}

type PermissionStatusCmd struct{}

func (c *PermissionStatusCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Platform()
	if err != nil {
		return err
	}
	status, err := p.PermissionStatus(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("Notification permission: %s\n", status)
	return nil
}
