package system

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/storage/postgres"
	"github.com/julianstephens/dayquote/internal/watcher"
)

// DaemonCmd keeps the schedule in step with preference and streak changes and
// delivers notifications as they come due.
type DaemonCmd struct {
	Interval time.Duration `help:"How often to look for due notifications." default:"1m"`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(ctx, c.Interval)
	if err != nil {
		return err
	}
	ctx.Printf("dayquote daemon running (checking every %s, Ctrl+C to stop)\n", c.Interval)
	return d.run(runCtx)
}

type daemon struct {
	app       *cli.Context
	interval  time.Duration
	debouncer *watcher.Debouncer
	last      string
}

// newDaemon builds the shared components up front so the goroutines only read
// the context's cached state.
func newDaemon(app *cli.Context, interval time.Duration) (*daemon, error) {
	if interval <= 0 {
		interval = constants.DispatchInterval
	}
	if _, err := app.Scheduler(); err != nil {
		return nil, err
	}
	if _, err := app.Dispatcher(); err != nil {
		return nil, err
	}
	return &daemon{
		app:       app,
		interval:  interval,
		debouncer: watcher.NewDebouncer(constants.RescheduleDebounce),
	}, nil
}

func (d *daemon) run(ctx context.Context) error {
	d.reschedule(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.debouncer.Run(gctx, d.reschedule)
	})

	// Postgres has no file to watch; the dispatch tick nudges the debouncer instead.
	if _, remote := d.app.Store.(*postgres.Store); !remote {
		fw, err := watcher.NewFileWatcher(d.app.Store.GetConfigPath())
		if err != nil {
			return err
		}
		g.Go(func() error {
			return fw.Run(gctx, d.debouncer.Notify)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		d.dispatch(gctx)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				d.dispatch(gctx)
				d.debouncer.Notify()
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reschedule rebuilds the schedule when preferences, the streak log,
// permission or the calendar day changed since the last run. Our own trigger
// writes land in the same file and are ignored here.
func (d *daemon) reschedule(ctx context.Context) {
	if err := d.app.Store.Load(); err != nil {
		logger.Warn("Failed to reload store", "error", err)
		return
	}
	tracker, err := d.app.Tracker()
	if err != nil {
		logger.Warn("Failed to open streak tracker", "error", err)
		return
	}
	tracker.Reload()

	fp, err := fingerprint(d.app, tracker.Today())
	if err != nil {
		logger.Warn("Failed to read schedule inputs", "error", err)
		return
	}
	if fp == d.last {
		logger.Debug("Schedule inputs unchanged, skipping reschedule")
		return
	}

	res, err := d.app.Reschedule(ctx, false)
	if err != nil {
		logger.Error("Reschedule failed", "error", err)
		return
	}
	if res.Dropped {
		return
	}
	d.last = fp
}

func (d *daemon) dispatch(ctx context.Context) {
	if err := d.app.Store.Load(); err != nil {
		logger.Warn("Failed to reload store", "error", err)
		return
	}
	if tracker, err := d.app.Tracker(); err == nil {
		tracker.Reload()
	}
	disp, err := d.app.Dispatcher()
	if err != nil {
		logger.Error("Failed to build dispatcher", "error", err)
		return
	}
	report, err := disp.Run(ctx)
	if err != nil {
		logger.Error("Dispatch failed", "error", err)
	}
	if len(report.Delivered) > 0 {
		logger.Info("Notifications delivered", "count", len(report.Delivered), "skipped", report.Skipped)
	}
}

// fingerprint joins the raw stored inputs of a reschedule with the current day.
func fingerprint(app *cli.Context, today string) (string, error) {
	parts := []string{today}
	for _, key := range []string{constants.KeyPreferences, constants.KeyStreakLog, constants.KeyNotificationPermission} {
		v, _, err := app.Store.GetValue(key)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "\x00"), nil
}
