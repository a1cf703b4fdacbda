package status

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/platform"
	"github.com/julianstephens/dayquote/internal/scheduler"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/streak"
	"github.com/julianstephens/dayquote/internal/tui"
	"github.com/julianstephens/dayquote/internal/utils"
)

type StatusCmd struct {
	Watch    bool          `help:"Keep the view open and refresh it." short:"w"`
	Interval time.Duration `help:"Refresh interval for --watch." default:"5s"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	b, err := newBackend(ctx)
	if err != nil {
		return err
	}

	if !c.Watch {
		snap, err := b.Snapshot()
		if err != nil {
			return err
		}
		ctx.Println(tui.Render(snap))
		return nil
	}

	p := tea.NewProgram(tui.NewModel(b, c.Interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("status view failed: %w", err)
	}
	return nil
}

// backend adapts the CLI context to the status view. Everything it touches is
// built up front since the view calls it from command goroutines.
type backend struct {
	app      *cli.Context
	store    storage.Provider
	tracker  *streak.Tracker
	platform *platform.Local
	loc      *time.Location
	now      func() time.Time
}

func newBackend(app *cli.Context) (*backend, error) {
	tracker, err := app.Tracker()
	if err != nil {
		return nil, err
	}
	p, err := app.Platform()
	if err != nil {
		return nil, err
	}
	if _, err := app.Scheduler(); err != nil {
		return nil, err
	}
	loc, err := app.Location()
	if err != nil {
		return nil, err
	}
	now := app.Now
	if now == nil {
		now = time.Now
	}
	return &backend{app: app, store: app.Store, tracker: tracker, platform: p, loc: loc, now: now}, nil
}

func (b *backend) Snapshot() (tui.Snapshot, error) {
	prefs, err := storage.GetPreferences(b.store)
	if err != nil {
		return tui.Snapshot{}, err
	}
	delivery, err := storage.GetDeliverySettings(b.store)
	if err != nil {
		return tui.Snapshot{}, err
	}
	permission, err := b.platform.PermissionStatus(context.Background())
	if err != nil {
		return tui.Snapshot{}, err
	}
	triggers, err := b.platform.ListAllScheduled(context.Background())
	if err != nil {
		return tui.Snapshot{}, err
	}

	log := b.tracker.Log()
	return tui.Snapshot{
		Now:           b.now(),
		Streak:        b.tracker.CurrentStreak(),
		LastActive:    lastActive(log, b.loc),
		TodayRecorded: slices.Contains(log, b.tracker.Today()),
		Preferences:   prefs,
		Delivery:      delivery,
		Permission:    permission,
		Triggers:      triggers,
	}, nil
}

func (b *backend) RecordActivity() (bool, error) {
	return b.tracker.RecordActivity(), nil
}

func (b *backend) Reschedule(ctx context.Context) (scheduler.Result, error) {
	return b.app.Reschedule(ctx, false)
}

// lastActive is the latest parseable day in log, zero when there is none.
func lastActive(log []string, loc *time.Location) time.Time {
	var last time.Time
	for _, e := range log {
		d, err := utils.ParseDay(e, loc)
		if err != nil {
			continue
		}
		if d.After(last) {
			last = d
		}
	}
	return last
}
