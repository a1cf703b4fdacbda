// Package notifier delivers fired notifications to the user.
package notifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/dayquote/internal/constants"
)

// Message is a rendered notification
type Message struct {
	Title string
	Body  string
}

// Sender delivers messages over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	// Probe reports whether the channel can currently reach the user.
	Probe(ctx context.Context) error
}

// Stdout prints notifications, for headless use and debugging.
type Stdout struct {
	W   io.Writer
	Now func() time.Time
}

func (s Stdout) Send(_ context.Context, msg Message) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	_, err := fmt.Fprintf(s.W, "[%s] %s\n  %s\n", now().Format(constants.ClockFormat), msg.Title, msg.Body)
	return err
}

func (s Stdout) Probe(context.Context) error {
	if s.W == nil {
		return fmt.Errorf("no output configured")
	}
	return nil
}
