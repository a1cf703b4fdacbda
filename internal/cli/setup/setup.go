package setup

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/keyring"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/storage"
	"github.com/julianstephens/dayquote/internal/utils"
)

// SetupCmd walks through preferences and delivery in an interactive form.
type SetupCmd struct {
	Accessible bool `help:"Use plain prompts instead of the full-screen form."`
}

// setupForm holds the form's bound values. Numbers are edited as text.
type setupForm struct {
	Enabled        bool
	PerDay         string
	StartHour      string
	EndHour        string
	StreakReminder bool
	Categories     []string

	Channel       constants.DeliveryChannel
	ChatID        string
	TelegramToken string
	Timezone      string
}

func newSetupForm(p models.Preferences, d models.DeliverySettings) *setupForm {
	fm := &setupForm{
		Enabled:        p.NotificationsEnabled,
		PerDay:         strconv.Itoa(p.NotificationsPerDay),
		StartHour:      strconv.Itoa(p.StartHour),
		EndHour:        strconv.Itoa(p.EndHour),
		StreakReminder: p.StreakReminderEnabled,
		Categories:     append([]string{}, p.SelectedCategories...),
		Channel:        d.Channel,
		Timezone:       d.Timezone,
	}
	if d.TelegramChatID != 0 {
		fm.ChatID = strconv.FormatInt(d.TelegramChatID, 10)
	}
	return fm
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if i < lo || i > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func (fm *setupForm) form(categories []string) *huh.Form {
	categoryOptions := make([]huh.Option[string], 0, len(categories))
	for _, c := range categories {
		categoryOptions = append(categoryOptions, huh.NewOption(c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send daily quote notifications?").
				Value(&fm.Enabled),
			huh.NewInput().
				Title("Quotes per day").
				Value(&fm.PerDay).
				Validate(intInRange(0, constants.MaxNotificationsPerDay)),
			huh.NewInput().
				Title("Start hour (0-23)").
				Value(&fm.StartHour).
				Validate(intInRange(0, 23)),
			huh.NewInput().
				Title("End hour (1-24)").
				Description("Notifications stop before this hour").
				Value(&fm.EndHour).
				Validate(func(s string) error {
					if err := intInRange(1, 24)(s); err != nil {
						return err
					}
					start, err := strconv.Atoi(strings.TrimSpace(fm.StartHour))
					end, _ := strconv.Atoi(strings.TrimSpace(s))
					if err == nil && end <= start {
						return fmt.Errorf("end hour must be after start hour")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Remind me when I haven't checked in today?").
				Value(&fm.StreakReminder),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Quote categories").
				Description("Leave empty for general quotes").
				Options(categoryOptions...).
				Value(&fm.Categories),
		),
		huh.NewGroup(
			huh.NewSelect[constants.DeliveryChannel]().
				Title("Delivery").
				Options(
					huh.NewOption("Tray app", constants.DeliveryTray),
					huh.NewOption("Telegram", constants.DeliveryTelegram),
					huh.NewOption("Terminal (stdout)", constants.DeliveryStdout),
				).
				Value(&fm.Channel),
			huh.NewInput().
				Title("Timezone (IANA name or 'Local')").
				Description("Examples: Local, UTC, America/New_York, Europe/London").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					if !utils.ValidateTimezone(s) {
						return fmt.Errorf("invalid timezone name")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram chat id").
				Value(&fm.ChatID).
				Validate(func(s string) error {
					if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
						return fmt.Errorf("chat id must be a number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Bot token").
				Description("Stored in the OS keyring. Leave empty to keep the current one.").
				EchoMode(huh.EchoModePassword).
				Value(&fm.TelegramToken),
		).WithHideFunc(func() bool { return fm.Channel != constants.DeliveryTelegram }),
	).WithTheme(huh.ThemeDracula())
}

// settings converts the form back into the stored types, keeping fields the
// form does not edit from the current values.
func (fm *setupForm) settings(p models.Preferences, d models.DeliverySettings) (models.Preferences, models.DeliverySettings) {
	p.NotificationsEnabled = fm.Enabled
	p.NotificationsPerDay, _ = strconv.Atoi(strings.TrimSpace(fm.PerDay))
	p.StartHour, _ = strconv.Atoi(strings.TrimSpace(fm.StartHour))
	p.EndHour, _ = strconv.Atoi(strings.TrimSpace(fm.EndHour))
	p.StreakReminderEnabled = fm.StreakReminder
	p.SelectedCategories = append([]string{}, fm.Categories...)

	d.Channel = fm.Channel
	d.Timezone = strings.TrimSpace(fm.Timezone)
	if fm.Channel == constants.DeliveryTelegram {
		d.TelegramChatID, _ = strconv.ParseInt(strings.TrimSpace(fm.ChatID), 10, 64)
	}
	return p, d
}

func (c *SetupCmd) Run(ctx *cli.Context) error {
	prefs, err := ctx.Preferences()
	if err != nil {
		return err
	}
	delivery, err := ctx.Delivery()
	if err != nil {
		return err
	}
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}

	fm := newSetupForm(prefs, delivery)
	if err := fm.form(cat.Categories()).WithAccessible(c.Accessible).Run(); err != nil {
		if err == huh.ErrUserAborted {
			ctx.Println("Setup cancelled.")
			return nil
		}
		return err
	}
	return apply(ctx, fm)
}

// apply validates and saves the form, then asks for permission and schedules.
func apply(ctx *cli.Context, fm *setupForm) error {
	current, err := ctx.Preferences()
	if err != nil {
		return err
	}
	currentDelivery, err := ctx.Delivery()
	if err != nil {
		return err
	}
	prefs, delivery := fm.settings(current, currentDelivery)

	v, err := ctx.Validator()
	if err != nil {
		return err
	}
	if res := v.ValidatePreferences(prefs); res.HasConflicts() {
		return res.Err()
	}
	if res := v.ValidateDelivery(delivery); res.HasConflicts() {
		return res.Err()
	}

	if token := strings.TrimSpace(fm.TelegramToken); token != "" {
		if err := keyring.Set(keyring.TelegramToken, token); err != nil {
			return fmt.Errorf("failed to store bot token: %w", err)
		}
	}
	if err := storage.SaveDeliverySettings(ctx.Store, delivery); err != nil {
		return fmt.Errorf("failed to save delivery settings: %w", err)
	}
	if err := storage.SavePreferences(ctx.Store, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	ctx.Println("✓ Settings saved")

	if !prefs.NotificationsEnabled {
		_, err := ctx.Reschedule(context.Background(), false)
		return err
	}

	p, err := ctx.Platform()
	if err != nil {
		return err
	}
	granted, err := p.RequestPermission(context.Background())
	if err != nil {
		return err
	}
	if !granted {
		ctx.Printf("⚠ Could not reach the %s channel. Run 'dayquote doctor', then 'dayquote permission request'.\n", delivery.Channel)
		return nil
	}

	res, err := ctx.Reschedule(context.Background(), false)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Scheduled %d notification(s)\n", len(res.TriggerIDs))
	return nil
}
