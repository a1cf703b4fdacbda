// Package tui is the live status view: streak progress, preferences and
// today's schedule, refreshed on a timer.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/scheduler"
)

// Snapshot is everything the status view shows at one instant
type Snapshot struct {
	Now           time.Time
	Streak        int
	LastActive    time.Time // zero when nothing is recorded
	TodayRecorded bool
	Preferences   models.Preferences
	Delivery      models.DeliverySettings
	Permission    constants.PermissionStatus
	Triggers      []models.Trigger
}

// Backend supplies snapshots and performs the view's actions.
type Backend interface {
	Snapshot() (Snapshot, error)
	RecordActivity() (bool, error)
	Reschedule(ctx context.Context) (scheduler.Result, error)
}

type snapshotMsg struct {
	snap Snapshot
	err  error
}

type tickMsg time.Time

// actionMsg reports the outcome of a key-triggered action
type actionMsg struct {
	status string
	err    error
}

type Model struct {
	backend  Backend
	interval time.Duration
	keys     KeyMap
	help     help.Model
	bar      progress.Model
	table    table.Model

	snap     Snapshot
	loaded   bool
	err      error
	status   string
	width    int
	quitting bool
}

// NewModel builds the view. interval controls how often the snapshot is
// reloaded; zero disables the timer.
func NewModel(backend Backend, interval time.Duration) Model {
	t := table.New(
		table.WithColumns(scheduleColumns(80)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	return Model{
		backend:  backend,
		interval: interval,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		table:    t,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.backend.Snapshot()
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) record() tea.Cmd {
	return func() tea.Msg {
		added, err := m.backend.RecordActivity()
		if err != nil {
			return actionMsg{err: err}
		}
		if !added {
			return actionMsg{status: "Today is already recorded"}
		}
		// Today's streak reminder is no longer wanted
		if _, err := m.backend.Reschedule(context.Background()); err != nil {
			return actionMsg{err: fmt.Errorf("recorded today, but rescheduling failed: %w", err)}
		}
		return actionMsg{status: "Recorded today"}
	}
}

func (m Model) reschedule() tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.Reschedule(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: describeResult(res)}
	}
}

func describeResult(res scheduler.Result) string {
	switch {
	case res.Dropped:
		return "A reschedule is already running"
	case res.Skipped == scheduler.SkipDisabled:
		return "Notifications are disabled; schedule cleared"
	case res.Skipped == scheduler.SkipPermission:
		return "Notification permission not granted; schedule cleared"
	default:
		return "Rescheduled " + pluralize(len(res.TriggerIDs), "notification")
	}
}
