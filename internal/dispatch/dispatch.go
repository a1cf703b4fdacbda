// Package dispatch fires scheduled triggers that have come due.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/julianstephens/dayquote/internal/analytics"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/notifier"
)

// Store is the trigger surface the dispatcher needs.
type Store interface {
	GetAllTriggers() ([]models.Trigger, error)
	MarkTriggerFired(id, day string) error
}

// Report summarises one dispatch pass
type Report struct {
	Due       int
	Delivered []models.Trigger
	Skipped   int
}

type Dispatcher struct {
	store    Store
	sender   notifier.Sender
	grace    time.Duration
	now      func() time.Time
	loc      *time.Location
	observer analytics.Observer
	skip     func(models.Trigger) bool
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) { d.loc = loc }
}

func WithObserver(o analytics.Observer) Option {
	return func(d *Dispatcher) { d.observer = analytics.OrNop(o) }
}

// WithSkip drops due triggers for which fn returns true. Skipped triggers are
// still marked fired so they are not retried later the same day.
func WithSkip(fn func(models.Trigger) bool) Option {
	return func(d *Dispatcher) { d.skip = fn }
}

func New(store Store, sender notifier.Sender, grace time.Duration, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		sender:   sender,
		grace:    grace,
		now:      time.Now,
		loc:      time.Local,
		observer: analytics.Nop{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Due returns the triggers that should fire at now: at or after their time of
// day, no more than grace late, and not yet fired on now's date.
func Due(triggers []models.Trigger, now time.Time, grace time.Duration) []models.Trigger {
	today := now.Format(constants.DateFormat)
	current := now.Hour()*60 + now.Minute()
	graceMin := int(grace / time.Minute)

	var due []models.Trigger
	for _, t := range triggers {
		if t.LastFiredDay == today {
			continue
		}
		late := current - t.At().Minutes()
		if late < 0 || late > graceMin {
			continue
		}
		due = append(due, t)
	}
	return due
}

// Run sends every due trigger. A failed send does not stop the pass; all
// failures are returned together.
func (d *Dispatcher) Run(ctx context.Context) (Report, error) {
	var report Report

	triggers, err := d.store.GetAllTriggers()
	if err != nil {
		return report, fmt.Errorf("failed to list triggers: %w", err)
	}

	now := d.now().In(d.loc)
	today := now.Format(constants.DateFormat)
	due := Due(triggers, now, d.grace)
	report.Due = len(due)

	var errs error
	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}

		if d.skip != nil && d.skip(t) {
			report.Skipped++
			logger.Debug("Skipping trigger", "id", t.ID, "kind", t.Kind())
			if err := d.store.MarkTriggerFired(t.ID, today); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("mark trigger %s: %w", t.ID, err))
			}
			continue
		}

		if err := d.sender.Send(ctx, notifier.Message{Title: t.Title, Body: t.Body}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("send trigger %s: %w", t.ID, err))
			continue
		}
		if err := d.store.MarkTriggerFired(t.ID, today); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark trigger %s: %w", t.ID, err))
		}
		report.Delivered = append(report.Delivered, t)

		props := map[string]any{
			"kind":       string(t.Kind()),
			"at":         t.At().String(),
			"late_min":   now.Hour()*60 + now.Minute() - t.At().Minutes(),
			"trigger_id": t.ID,
		}
		if id, ok := t.Data["quote_id"]; ok {
			props["quote_id"] = id
		}
		d.observer.Capture(constants.EventNotificationDelivered, props)
	}

	if errs != nil {
		logger.Warn("Dispatch completed with errors", "delivered", len(report.Delivered), "failed", len(multierr.Errors(errs)))
	}
	return report, errs
}
