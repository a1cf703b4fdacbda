// Package analytics captures product events without ever blocking or failing
// the caller.
package analytics

import (
	"github.com/julianstephens/dayquote/internal/logger"
)

// Observer receives fire-and-forget events
type Observer interface {
	Capture(event string, props map[string]any)
}

// Nop discards events
type Nop struct{}

func (Nop) Capture(string, map[string]any) {}

// LogObserver writes events to the application log at info level
type LogObserver struct{}

func (LogObserver) Capture(event string, props map[string]any) {
	kv := make([]interface{}, 0, 2+2*len(props))
	kv = append(kv, "event", event)
	for k, v := range props {
		kv = append(kv, k, v)
	}
	logger.Info("analytics", kv...)
}

// Multi fans an event out to several observers
type Multi []Observer

func (m Multi) Capture(event string, props map[string]any) {
	for _, o := range m {
		if o != nil {
			o.Capture(event, props)
		}
	}
}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}
