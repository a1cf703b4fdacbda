package settings

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/storage"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled *bool    `help:"Enable or disable all notifications."`
	PerDay               *int     `help:"Quote notifications per day."`
	StartHour            *int     `help:"First hour of the notification window (0-23)."`
	EndHour              *int     `help:"Exclusive last hour of the notification window (1-24)."`
	StreakReminder       *bool    `help:"Remind me late in the day when today is not recorded."`
	Categories           []string `help:"Quote categories to draw from, comma separated." sep:","`
	ClearCategories      bool     `help:"Draw from the general category only."`

	Channel           *string `help:"Delivery channel: tray, telegram or stdout."`
	TelegramChatID    *int64  `help:"Telegram chat to deliver to."`
	GracePeriod       *int    `help:"Minutes a notification may still fire after its time."`
	Timezone          *string `help:"IANA timezone calendar days are evaluated in, or Local."`
	AnalyticsEndpoint *string `help:"Capture URL for anonymous usage events, empty to disable."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	prefs, err := ctx.Preferences()
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}
	delivery, err := ctx.Delivery()
	if err != nil {
		return fmt.Errorf("failed to get delivery settings: %w", err)
	}

	if c.List {
		ctx.Println("Notification Preferences:")
		ctx.Printf("  Notifications Enabled: %v\n", prefs.NotificationsEnabled)
		ctx.Printf("  Quotes Per Day:        %d\n", prefs.NotificationsPerDay)
		ctx.Printf("  Window:                %02d:00-%02d:00\n", prefs.StartHour, prefs.EndHour)
		ctx.Printf("  Streak Reminder:       %v\n", prefs.StreakReminderEnabled)
		ctx.Printf("  Categories:            %s\n", formatCategories(prefs.SelectedCategories))
		ctx.Println("\nDelivery Settings:")
		ctx.Printf("  Channel:               %s\n", delivery.Channel)
		if delivery.Channel == constants.DeliveryTelegram {
			ctx.Printf("  Telegram Chat:         %d\n", delivery.TelegramChatID)
		}
		ctx.Printf("  Grace Period:          %d min\n", delivery.GracePeriodMin)
		ctx.Printf("  Timezone:              %s\n", delivery.Timezone)
		if delivery.AnalyticsEndpoint != "" {
			ctx.Printf("  Analytics Endpoint:    %s\n", delivery.AnalyticsEndpoint)
		}
		return nil
	}

	before := prefs
	before.SelectedCategories = slices.Clone(prefs.SelectedCategories)
	prefsUpdated := false
	if c.NotificationsEnabled != nil {
		prefs.NotificationsEnabled = *c.NotificationsEnabled
		prefsUpdated = true
	}
	if c.PerDay != nil {
		prefs.NotificationsPerDay = *c.PerDay
		prefsUpdated = true
	}
	if c.StartHour != nil {
		prefs.StartHour = *c.StartHour
		prefsUpdated = true
	}
	if c.EndHour != nil {
		prefs.EndHour = *c.EndHour
		prefsUpdated = true
	}
	if c.StreakReminder != nil {
		prefs.StreakReminderEnabled = *c.StreakReminder
		prefsUpdated = true
	}
	if c.ClearCategories {
		prefs.SelectedCategories = []string{}
		prefsUpdated = true
	} else if c.Categories != nil {
		prefs.SelectedCategories = normalizeCategories(c.Categories)
		prefsUpdated = true
	}

	deliveryUpdated := false
	if c.Channel != nil {
		delivery.Channel = constants.DeliveryChannel(*c.Channel)
		deliveryUpdated = true
	}
	if c.TelegramChatID != nil {
		delivery.TelegramChatID = *c.TelegramChatID
		deliveryUpdated = true
	}
	if c.GracePeriod != nil {
		delivery.GracePeriodMin = *c.GracePeriod
		deliveryUpdated = true
	}
	if c.Timezone != nil {
		delivery.Timezone = *c.Timezone
		deliveryUpdated = true
	}
	if c.AnalyticsEndpoint != nil {
		delivery.AnalyticsEndpoint = *c.AnalyticsEndpoint
		deliveryUpdated = true
	}

	if !prefsUpdated && !deliveryUpdated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	v, err := ctx.Validator()
	if err != nil {
		return err
	}
	if prefsUpdated {
		if res := v.ValidatePreferences(prefs); res.HasConflicts() {
			return res.Err()
		}
	}
	if deliveryUpdated {
		if res := v.ValidateDelivery(delivery); res.HasConflicts() {
			return res.Err()
		}
		if err := storage.SaveDeliverySettings(ctx.Store, delivery); err != nil {
			return fmt.Errorf("failed to save delivery settings: %w", err)
		}
	}
	if prefsUpdated {
		if err := storage.SavePreferences(ctx.Store, prefs); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
	}
	ctx.Println("Settings updated successfully.")

	if !prefsUpdated || preferencesEqual(before, prefs) {
		return nil
	}
	res, err := ctx.Reschedule(context.Background(), false)
	if err != nil {
		return fmt.Errorf("settings saved but rescheduling failed: %w", err)
	}
	if res.Skipped != "" {
		ctx.Printf("Nothing scheduled: %s\n", res.Skipped)
	} else {
		ctx.Printf("Rescheduled %d notification(s)\n", len(res.TriggerIDs))
	}
	return nil
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func formatCategories(categories []string) string {
	if len(categories) == 0 {
		return constants.DefaultFallbackCategory + " (default)"
	}
	return strings.Join(categories, ", ")
}

func preferencesEqual(a, b models.Preferences) bool {
	return a.NotificationsEnabled == b.NotificationsEnabled &&
		a.NotificationsPerDay == b.NotificationsPerDay &&
		a.StartHour == b.StartHour &&
		a.EndHour == b.EndHour &&
		a.StreakReminderEnabled == b.StreakReminderEnabled &&
		slices.Equal(a.SelectedCategories, b.SelectedCategories)
}
