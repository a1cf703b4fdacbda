package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayquote/internal/constants"
)

// TimeOfDay is a wall-clock time within a day
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayFromMinutes converts minutes since midnight to a TimeOfDay.
func TimeOfDayFromMinutes(m int) TimeOfDay {
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// TriggerRequest describes a daily notification to register with the platform
type TriggerRequest struct {
	Hour   int            `json:"hour"`
	Minute int            `json:"minute"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// Trigger is a registered daily notification
type Trigger struct {
	ID           string         `json:"id"`
	Hour         int            `json:"hour"`
	Minute       int            `json:"minute"`
	Repeats      bool           `json:"repeats"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Data         map[string]any `json:"data,omitempty"`
	LastFiredDay string         `json:"last_fired_day,omitempty"` // YYYY-MM-DD of the last delivery
	CreatedAt    time.Time      `json:"created_at"`
}

// Kind reads the trigger kind from its data payload.
func (t Trigger) Kind() constants.TriggerKind {
	if v, ok := t.Data["kind"].(string); ok {
		return constants.TriggerKind(v)
	}
	return constants.TriggerKindQuote
}

// At returns the trigger's time of day.
func (t Trigger) At() TimeOfDay {
	return TimeOfDay{Hour: t.Hour, Minute: t.Minute}
}

// Validate checks the trigger fields that storage relies on.
func (t *Trigger) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trigger id cannot be empty")
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("trigger hour %d out of range 0-23", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("trigger minute %d out of range 0-59", t.Minute)
	}
	if t.LastFiredDay != "" {
		if _, err := time.Parse(constants.DateFormat, t.LastFiredDay); err != nil {
			return fmt.Errorf("invalid last fired day (expected YYYY-MM-DD): %w", err)
		}
	}
	return nil
}
