// Package cli holds the application context shared by every command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/dayquote/internal/analytics"
	"github.com/julianstephens/dayquote/internal/backup"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/dispatch"
	"github.com/julianstephens/dayquote/internal/keyring"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/notifier"
	"github.com/julianstephens/dayquote/internal/notifier/telegram"
	"github.com/julianstephens/dayquote/internal/platform"
	"github.com/julianstephens/dayquote/internal/quotes"
	"github.com/julianstephens/dayquote/internal/scheduler"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
	"github.com/julianstephens/dayquote/internal/streak"
	"github.com/julianstephens/dayquote/internal/utils"
	"github.com/julianstephens/dayquote/internal/validation"
)

// Context is handed to every command's Run method. Components are built on
// first use and share the one store.
type Context struct {
	Store storage.Provider
	Out   io.Writer
	In    io.Reader

	// Optional overrides, used by tests and the --stdout flag
	Sender notifier.Sender
	Now    func() time.Time

	catalog  *quotes.Catalog
	observer analytics.Observer
	remote   *analytics.HTTPObserver
	platform *platform.Local
	tracker  *streak.Tracker
	sched    *scheduler.Scheduler
}

func NewContext(store storage.Provider) *Context {
	return &Context{Store: store, Out: os.Stdout, In: os.Stdin}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Catalog returns the bundled quote catalog.
func (c *Context) Catalog() (*quotes.Catalog, error) {
	if c.catalog == nil {
		catalog, err := quotes.Bundled()
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}
	return c.catalog, nil
}

// Validator checks settings against the bundled catalog.
func (c *Context) Validator() (*validation.Validator, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return nil, err
	}
	return validation.New(catalog), nil
}

func (c *Context) Preferences() (models.Preferences, error) {
	return storage.GetPreferences(c.Store)
}

func (c *Context) Delivery() (models.DeliverySettings, error) {
	return storage.GetDeliverySettings(c.Store)
}

// Location is the zone calendar days are evaluated in.
func (c *Context) Location() (*time.Location, error) {
	d, err := c.Delivery()
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// Observer returns the analytics fan-out: the log always, plus the remote
// endpoint when one is configured.
func (c *Context) Observer() analytics.Observer {
	if c.observer != nil {
		return c.observer
	}
	obs := analytics.Multi{analytics.LogObserver{}}

	d, err := c.Delivery()
	if err == nil && d.AnalyticsEndpoint != "" {
		installID, err := storage.EnsureInstallID(c.Store)
		if err != nil {
			logger.Warn("Remote analytics disabled, no install id", "error", err)
		} else {
			var opts []analytics.HTTPOption
			if key, err := keyring.Resolve(keyring.AnalyticsKey); err == nil {
				opts = append(opts, analytics.WithSigningKey([]byte(key)))
			}
			c.remote = analytics.NewHTTPObserver(d.AnalyticsEndpoint, installID, opts...)
			obs = append(obs, c.remote)
		}
	}
	c.observer = obs
	return c.observer
}

// SenderFor builds the delivery channel named in d.
func (c *Context) SenderFor(d models.DeliverySettings) (notifier.Sender, error) {
	if c.Sender != nil {
		return c.Sender, nil
	}
	switch d.Channel {
	case constants.DeliveryTray:
		return notifier.NewTray(), nil
	case constants.DeliveryTelegram:
		token, err := keyring.Resolve(keyring.TelegramToken)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no telegram bot token: set %s or run 'dayquote keyring set %s <token>'", constants.EnvTelegramToken, keyring.TelegramToken)
			}
			return nil, err
		}
		return telegram.New(token, d.TelegramChatID)
	case constants.DeliveryStdout:
		return notifier.Stdout{W: c.out(), Now: c.Now}, nil
	default:
		return nil, fmt.Errorf("unknown delivery channel %q", d.Channel)
	}
}

// Platform returns the store-backed notification platform. Permission probes
// go through the configured delivery channel.
func (c *Context) Platform() (*platform.Local, error) {
	if c.platform != nil {
		return c.platform, nil
	}
	d, err := c.Delivery()
	if err != nil {
		return nil, err
	}
	probe := platform.ProbeFunc(func(ctx context.Context) error {
		sender, err := c.SenderFor(d)
		if err != nil {
			return err
		}
		return sender.Probe(ctx)
	})
	c.platform = platform.NewLocal(c.Store, probe)
	return c.platform, nil
}

func (c *Context) Tracker() (*streak.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := []streak.Option{streak.WithLocation(loc), streak.WithObserver(c.Observer())}
	if c.Now != nil {
		opts = append(opts, streak.WithClock(c.Now))
	}
	c.tracker = streak.NewTracker(c.Store, opts...)
	return c.tracker, nil
}

func (c *Context) Scheduler() (*scheduler.Scheduler, error) {
	if c.sched != nil {
		return c.sched, nil
	}
	catalog, err := c.Catalog()
	if err != nil {
		return nil, err
	}
	p, err := c.Platform()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := []scheduler.Option{scheduler.WithLocation(loc), scheduler.WithObserver(c.Observer())}
	if c.Now != nil {
		opts = append(opts, scheduler.WithClock(c.Now))
	}
	c.sched = scheduler.New(p, catalog, opts...)
	return c.sched, nil
}

// Reschedule rebuilds the scheduled set from the stored preferences and the
// tracker's log.
func (c *Context) Reschedule(ctx context.Context, readBack bool) (scheduler.Result, error) {
	prefs, err := c.Preferences()
	if err != nil {
		return scheduler.Result{}, err
	}
	// Stored values bypass validation when edited by hand
	if prefs.NotificationsPerDay > constants.MaxNotificationsPerDay {
		logger.Warn("Notifications per day above limit, clamping",
			"stored", prefs.NotificationsPerDay, "limit", constants.MaxNotificationsPerDay)
		prefs.NotificationsPerDay = constants.MaxNotificationsPerDay
	}
	tracker, err := c.Tracker()
	if err != nil {
		return scheduler.Result{}, err
	}
	sched, err := c.Scheduler()
	if err != nil {
		return scheduler.Result{}, err
	}
	return sched.Reschedule(ctx, scheduler.Request{
		Preferences: prefs,
		StreakLog:   tracker.Log(),
		ReadBack:    readBack,
	})
}

// Dispatcher fires due triggers through the configured channel. Streak
// reminders are skipped once today has been recorded.
func (c *Context) Dispatcher() (*dispatch.Dispatcher, error) {
	d, err := c.Delivery()
	if err != nil {
		return nil, err
	}
	sender, err := c.SenderFor(d)
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	tracker, err := c.Tracker()
	if err != nil {
		return nil, err
	}
	opts := []dispatch.Option{
		dispatch.WithLocation(loc),
		dispatch.WithObserver(c.Observer()),
		dispatch.WithSkip(func(t models.Trigger) bool {
			if t.Kind() != constants.TriggerKindStreakReminder {
				return false
			}
			for _, day := range tracker.Log() {
				if day == tracker.Today() {
					return true
				}
			}
			return false
		}),
	}
	if c.Now != nil {
		opts = append(opts, dispatch.WithClock(c.Now))
	}
	return dispatch.New(c.Store, sender, time.Duration(d.GracePeriodMin)*time.Minute, opts...), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Close flushes pending analytics and closes the store.
func (c *Context) Close(ctx context.Context) error {
	if c.remote != nil {
		if err := c.remote.Close(ctx); err != nil {
			logger.Warn("Analytics flush incomplete", "error", err)
		}
		c.remote = nil
	}
	return c.Store.Close()
}
