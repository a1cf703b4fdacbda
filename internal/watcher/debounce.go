// Package watcher turns bursts of change signals into single reschedule calls.
package watcher

import (
	"context"
	"time"
)

// Debouncer collapses Notify calls into one callback after a quiet period.
// Each Notify restarts the delay.
type Debouncer struct {
	delay  time.Duration
	events chan struct{}
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		events: make(chan struct{}, 1),
	}
}

// Notify records a change. It never blocks.
func (d *Debouncer) Notify() {
	select {
	case d.events <- struct{}{}:
	default:
	}
}

// Run calls fn once per quiet period until ctx is done. fn runs on the Run
// goroutine, so callbacks never overlap.
func (d *Debouncer) Run(ctx context.Context, fn func(context.Context)) error {
	timer := time.NewTimer(d.delay)
	timer.Stop()
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.events:
			timer.Reset(d.delay)
			pending = true
		case <-timer.C:
			if pending {
				pending = false
				fn(ctx)
			}
		}
	}
}
