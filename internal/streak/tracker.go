// Package streak keeps the day-based engagement log and derives the current
// streak from it.
package streak

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"github.com/julianstephens/dayquote/internal/analytics"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/errors"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/storage"
)

// Tracker owns the in-memory streak log. Reads and writes go through its lock;
// persistence is best effort and the in-memory log stays authoritative.
type Tracker struct {
	mu       sync.Mutex
	kv       storage.KV
	log      []string
	prev     int
	now      func() time.Time
	loc      *time.Location
	observer analytics.Observer
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the zone calendar days are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

func WithObserver(o analytics.Observer) Option {
	return func(t *Tracker) { t.observer = analytics.OrNop(o) }
}

// NewTracker loads the persisted log. A missing or unreadable log starts empty.
func NewTracker(kv storage.KV, opts ...Option) *Tracker {
	t := &Tracker{
		kv:       kv,
		now:      time.Now,
		loc:      time.Local,
		observer: analytics.Nop{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.read()
	t.prev = t.currentLocked()
	return t
}

func (t *Tracker) read() []string {
	var entries []string
	if _, err := storage.GetJSON(t.kv, constants.KeyStreakLog, &entries); err != nil {
		logger.Warn("Failed to load streak log, starting empty", "error", err)
		return []string{}
	}
	if entries == nil {
		entries = []string{}
	}
	return entries
}

// persist writes the log; failures are logged and swallowed.
func (t *Tracker) persist() {
	errors.Swallow("persist streak log", storage.SetJSON(t.kv, constants.KeyStreakLog, t.log))
}

// Reload replaces the in-memory log with the persisted one, for changes made by
// another process. Milestones are not emitted for reloaded progress.
func (t *Tracker) Reload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = t.read()
	t.prev = t.currentLocked()
}

// Log returns a copy of the current log.
func (t *Tracker) Log() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.log)
}

// Today is the local date string activity is recorded under.
func (t *Tracker) Today() string {
	return t.now().In(t.loc).Format(constants.DateFormat)
}

// RecordActivity adds today to the log. It reports true only when today was
// not already present.
func (t *Tracker) RecordActivity() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.Today()
	if slices.Contains(t.log, today) {
		return false
	}
	t.log = dedupe(append(t.log, today))
	t.persist()

	streak := t.currentLocked()
	logger.Debug("Activity recorded", "day", today, "streak", streak)
	t.observer.Capture(constants.EventActivityRecorded, map[string]any{"day": today, "streak": streak})
	t.observeLocked(streak)
	return true
}

// CurrentStreak counts consecutive days ending today, or yesterday when today
// has not been recorded yet. It is 0 when neither day is in the log.
func (t *Tracker) CurrentStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	streak := t.currentLocked()
	t.observeLocked(streak)
	return streak
}

func (t *Tracker) currentLocked() int {
	return Count(t.log, t.now().In(t.loc))
}

// observeLocked emits one milestone event per threshold crossed since the last
// observed value, then remembers the new value. A drop resets the baseline.
func (t *Tracker) observeLocked(streak int) {
	for _, m := range constants.StreakMilestones {
		if t.prev < m && m <= streak {
			logger.Info("Streak milestone reached", "milestone", m, "streak", streak)
			t.observer.Capture(constants.EventStreakMilestone, map[string]any{"milestone": m, "streak": streak})
		}
	}
	t.prev = streak
}

// MigrateAndFixDates rewrites every entry as YYYY-MM-DD in the tracker's zone,
// dropping entries that cannot be parsed, then dedupes, sorts and persists.
func (t *Tracker) MigrateAndFixDates() (before, after []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	before = slices.Clone(t.log)
	after = Normalize(t.log, t.loc)
	t.log = slices.Clone(after)
	t.persist()

	logger.Info("Streak log repaired", "before", len(before), "after", len(after))
	t.observeLocked(t.currentLocked())
	return before, after
}

// Normalize parses each entry in loc and returns the sorted, deduplicated
// canonical dates. Unparseable entries are dropped.
func Normalize(entries []string, loc *time.Location) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		parsed, err := dateparse.ParseIn(e, loc)
		if err != nil {
			logger.Debug("Dropping malformed streak entry", "entry", e)
			continue
		}
		out = append(out, parsed.In(loc).Format(constants.DateFormat))
	}
	out = dedupe(out)
	sort.Strings(out)
	return out
}

// Count is the streak for log as of the calendar day of now. Unparseable and
// duplicate entries are ignored rather than ending the walk, so legacy logs
// that predate MigrateAndFixDates still count their valid days.
func Count(log []string, now time.Time) int {
	days := make([]int, 0, len(log))
	for _, e := range log {
		d, err := time.Parse(constants.DateFormat, e)
		if err != nil {
			continue
		}
		days = append(days, dayNumber(d))
	}
	if len(days) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	days = slices.Compact(days)

	today := dayNumber(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if days[0] != today && days[0] != today-1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i] != days[i-1]-1 {
			break
		}
		streak++
	}
	return streak
}

// dayNumber counts whole days since the epoch for a UTC midnight.
func dayNumber(d time.Time) int {
	return int(d.Unix() / 86400)
}

func dedupe(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// NextMilestone returns the smallest milestone above streak and the milestone
// at or below it (0 when none). ok is false once every milestone is passed.
func NextMilestone(streak int) (next, prev int, ok bool) {
	for _, m := range constants.StreakMilestones {
		if m > streak {
			return m, prev, true
		}
		prev = m
	}
	return 0, prev, false
}
