package models

import (
	"github.com/julianstephens/dayquote/internal/constants"
)

// Preferences are the user's notification choices
type Preferences struct {
	NotificationsPerDay   int      `json:"notifications_per_day"`   // quote notifications per day
	StartHour             int      `json:"start_hour"`              // first hour of the active window, 0-23
	EndHour               int      `json:"end_hour"`                // exclusive end hour of the active window, 1-24
	NotificationsEnabled  bool     `json:"notifications_enabled"`   // master switch for all notifications
	StreakReminderEnabled bool     `json:"streak_reminder_enabled"` // late-day reminder when today is not recorded
	SelectedCategories    []string `json:"selected_categories"`     // quote categories to draw from, empty means general
}

// DefaultPreferences returns the preferences used before the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{
		NotificationsPerDay:   constants.DefaultNotificationsPerDay,
		StartHour:             constants.DefaultStartHour,
		EndHour:               constants.DefaultEndHour,
		NotificationsEnabled:  constants.DefaultNotificationsEnabled,
		StreakReminderEnabled: constants.DefaultStreakReminderEnabled,
		SelectedCategories:    []string{},
	}
}

// DeliverySettings control how fired triggers reach the user
type DeliverySettings struct {
	Channel           constants.DeliveryChannel `json:"channel"`                      // tray, telegram or stdout
	TelegramChatID    int64                     `json:"telegram_chat_id,omitempty"`   // required for the telegram channel
	GracePeriodMin    int                       `json:"grace_period_min"`             // how late a trigger may still fire
	Timezone          string                    `json:"timezone"`                     // IANA name or "Local"
	AnalyticsEndpoint string                    `json:"analytics_endpoint,omitempty"` // capture URL, empty disables remote analytics
}

// DefaultDeliverySettings returns the delivery settings for a fresh install.
func DefaultDeliverySettings() DeliverySettings {
	return DeliverySettings{
		Channel:        constants.DefaultDeliveryChannel,
		GracePeriodMin: constants.DefaultGracePeriodMin,
		Timezone:       constants.DefaultTimezone,
	}
}

// ApplyDefaults fills zero-valued fields that have no meaningful zero.
func (d *DeliverySettings) ApplyDefaults() {
	if d.Channel == "" {
		d.Channel = constants.DefaultDeliveryChannel
	}
	if d.Timezone == "" {
		d.Timezone = constants.DefaultTimezone
	}
}
