// Package scheduler turns notification preferences into the set of daily
// triggers registered with the notification platform.
package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/julianstephens/dayquote/internal/analytics"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/quotes"
)

// State is the reschedule state machine
type State int32

const (
	Idle State = iota
	Scheduling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduling:
		return "scheduling"
	default:
		return "unknown"
	}
}

// Skip reasons reported in Result.Skipped
const (
	SkipDisabled   = "notifications disabled"
	SkipPermission = "permission not granted"
)

// Request carries everything one reschedule needs
type Request struct {
	Preferences models.Preferences
	StreakLog   []string
	// ReadBack lists the platform's scheduled set once registration is done.
	ReadBack bool
}

// Result describes what a reschedule did
type Result struct {
	Dropped    bool             // another reschedule was in flight
	Skipped    string           // why nothing was registered, empty otherwise
	TriggerIDs []string         // registered ids, in registration order
	Reminder   bool             // a streak reminder was registered
	Scheduled  []models.Trigger // platform read-back, when requested
}

type Scheduler struct {
	platform Platform
	quotes   quotes.Source
	observer analytics.Observer
	rng      *rand.Rand
	now      func() time.Time
	loc      *time.Location
	state    atomic.Int32
}

type Option func(*Scheduler)

// WithRand makes jitter and quote selection deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) { s.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the zone "today" is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

func WithObserver(o analytics.Observer) Option {
	return func(s *Scheduler) { s.observer = analytics.OrNop(o) }
}

func New(platform Platform, source quotes.Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		platform: platform,
		quotes:   source,
		observer: analytics.Nop{},
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports whether a reschedule is in flight.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Reschedule replaces the platform's scheduled set with one derived from req.
//
// Only one reschedule runs at a time; a call that arrives while another is in
// flight is dropped and reports Result.Dropped. A registration failure stops
// the sequence and leaves the triggers registered so far in place.
func (s *Scheduler) Reschedule(ctx context.Context, req Request) (Result, error) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Scheduling)) {
		logger.Debug("Reschedule already in flight, dropping request")
		return Result{Dropped: true}, nil
	}
	defer s.state.Store(int32(Idle))

	res, err := s.reschedule(ctx, req)
	if err != nil {
		logger.Error("Reschedule failed", "error", err, "registered", len(res.TriggerIDs))
		return res, err
	}

	logger.Info("Notifications rescheduled", "count", len(res.TriggerIDs), "reminder", res.Reminder, "skipped", res.Skipped)
	s.observer.Capture(constants.EventNotificationsScheduled, map[string]any{
		"count":    len(res.TriggerIDs),
		"reminder": res.Reminder,
		"skipped":  res.Skipped,
	})
	return res, nil
}

func (s *Scheduler) reschedule(ctx context.Context, req Request) (Result, error) {
	var res Result
	prefs := req.Preferences

	// Step 1: Clear whatever is registered, even when nothing will replace it
	if err := s.platform.CancelAllScheduled(ctx); err != nil {
		return res, fmt.Errorf("cancel scheduled notifications: %w", err)
	}

	// Step 2: Nothing to register when disabled or not permitted
	if !prefs.NotificationsEnabled {
		res.Skipped = SkipDisabled
		return res, nil
	}
	status, err := s.platform.PermissionStatus(ctx)
	if err != nil {
		return res, fmt.Errorf("read permission status: %w", err)
	}
	if status != constants.PermissionGranted {
		res.Skipped = SkipPermission
		return res, nil
	}

	// Step 3: Spread the day's quote times over the window
	times := ComputeTimes(prefs.NotificationsPerDay, prefs.StartHour, prefs.EndHour, s.rng)

	// Step 4: One quote trigger per time
	categories := slices.Clone(prefs.SelectedCategories)
	if categories == nil {
		categories = []string{}
	}
	for i, at := range times {
		q := quotes.Select(s.quotes, categories, s.rng)
		id, err := s.platform.ScheduleRecurringDaily(ctx, models.TriggerRequest{
			Hour:   at.Hour,
			Minute: at.Minute,
			Title:  quoteTitle,
			Body:   q.Display(),
			Data: map[string]any{
				"quote_id":   q.ID,
				"categories": categories,
				"slot":       i,
				"kind":       string(constants.TriggerKindQuote),
			},
		})
		if err != nil {
			return res, fmt.Errorf("schedule quote notification %d at %s: %w", i, at, err)
		}
		res.TriggerIDs = append(res.TriggerIDs, id)
	}

	// Step 5: Streak reminder, only while today is still unrecorded
	if prefs.StreakReminderEnabled && !slices.Contains(req.StreakLog, s.today()) {
		at := ReminderTime(prefs.StartHour, prefs.EndHour, s.rng)
		id, err := s.platform.ScheduleRecurringDaily(ctx, models.TriggerRequest{
			Hour:   at.Hour,
			Minute: at.Minute,
			Title:  reminderTitle,
			Body:   reminderMessage(s.rng),
			Data:   map[string]any{"kind": string(constants.TriggerKindStreakReminder)},
		})
		if err != nil {
			return res, fmt.Errorf("schedule streak reminder at %s: %w", at, err)
		}
		res.TriggerIDs = append(res.TriggerIDs, id)
		res.Reminder = true
	}

	// Step 6: Optional read-back for diagnostics
	if req.ReadBack {
		scheduled, err := s.platform.ListAllScheduled(ctx)
		if err != nil {
			return res, fmt.Errorf("list scheduled notifications: %w", err)
		}
		res.Scheduled = scheduled
	}

	return res, nil
}

func (s *Scheduler) today() string {
	return s.now().In(s.loc).Format(constants.DateFormat)
}
