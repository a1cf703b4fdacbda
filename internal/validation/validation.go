package validation

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictCountOutOfRange   ConflictType = "count_out_of_range"
	ConflictInvalidWindow     ConflictType = "invalid_window"
	ConflictUnknownCategory   ConflictType = "unknown_category"
	ConflictDuplicateCategory ConflictType = "duplicate_category"
	ConflictInvalidChannel    ConflictType = "invalid_channel"
	ConflictMissingChatID     ConflictType = "missing_chat_id"
	ConflictGracePeriod       ConflictType = "grace_period_out_of_range"
	ConflictInvalidTimezone   ConflictType = "invalid_timezone"
	ConflictInvalidEndpoint   ConflictType = "invalid_endpoint"
)

// Conflict represents a single rejected setting
type Conflict struct {
	Type        ConflictType
	Field       string
	Description string
	Suggestions []string // Close matches for unknown names
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Err returns nil when there are no conflicts, otherwise an error carrying
// the report.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	return fmt.Errorf("invalid settings:\n%s", strings.TrimSuffix(vr.list(), "\n"))
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	return "Conflicts detected:\n" + vr.list()
}

func (vr *ValidationResult) list() string {
	var b strings.Builder
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}

// Categories is the set of quote categories settings may refer to.
type Categories interface {
	Has(category string) bool
	Categories() []string
}

// Validator checks preferences and delivery settings before they are saved
type Validator struct {
	categories Categories
}

// New creates a new Validator. A nil category set skips category checks.
func New(categories Categories) *Validator {
	return &Validator{categories: categories}
}

// ValidatePreferences checks notification preferences
func (v *Validator) ValidatePreferences(p models.Preferences) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if p.NotificationsPerDay < 0 || p.NotificationsPerDay > constants.MaxNotificationsPerDay {
		result.add(Conflict{
			Type:        ConflictCountOutOfRange,
			Field:       "notifications_per_day",
			Description: fmt.Sprintf("Notifications per day must be between 0 and %d, got %d", constants.MaxNotificationsPerDay, p.NotificationsPerDay),
		})
	}

	if p.StartHour < 0 || p.StartHour > 23 {
		result.add(Conflict{
			Type:        ConflictInvalidWindow,
			Field:       "start_hour",
			Description: fmt.Sprintf("Start hour must be between 0 and 23, got %d", p.StartHour),
		})
	}
	if p.EndHour < 1 || p.EndHour > 24 {
		result.add(Conflict{
			Type:        ConflictInvalidWindow,
			Field:       "end_hour",
			Description: fmt.Sprintf("End hour must be between 1 and 24, got %d", p.EndHour),
		})
	}
	if p.StartHour >= p.EndHour {
		result.add(Conflict{
			Type:        ConflictInvalidWindow,
			Field:       "end_hour",
			Description: fmt.Sprintf("Start hour (%d) must be before end hour (%d)", p.StartHour, p.EndHour),
		})
	}

	seen := make(map[string]bool, len(p.SelectedCategories))
	for _, c := range p.SelectedCategories {
		if seen[c] {
			result.add(Conflict{
				Type:        ConflictDuplicateCategory,
				Field:       "selected_categories",
				Description: fmt.Sprintf("Category %q is selected more than once", c),
			})
			continue
		}
		seen[c] = true

		if v.categories == nil || v.categories.Has(c) {
			continue
		}
		suggestions := v.Suggest(c)
		desc := fmt.Sprintf("Unknown category %q", c)
		if len(suggestions) > 0 {
			desc += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
		}
		result.add(Conflict{
			Type:        ConflictUnknownCategory,
			Field:       "selected_categories",
			Description: desc,
			Suggestions: suggestions,
		})
	}

	return result
}

// ValidateDelivery checks delivery settings
func (v *Validator) ValidateDelivery(d models.DeliverySettings) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	switch d.Channel {
	case constants.DeliveryTray, constants.DeliveryStdout:
	case constants.DeliveryTelegram:
		if d.TelegramChatID == 0 {
			result.add(Conflict{
				Type:        ConflictMissingChatID,
				Field:       "telegram_chat_id",
				Description: "Telegram delivery requires a chat id",
			})
		}
	default:
		result.add(Conflict{
			Type:        ConflictInvalidChannel,
			Field:       "channel",
			Description: fmt.Sprintf("Unknown delivery channel %q (expected tray, telegram or stdout)", d.Channel),
		})
	}

	if d.GracePeriodMin < 0 || d.GracePeriodMin > constants.MaxGracePeriodMin {
		result.add(Conflict{
			Type:        ConflictGracePeriod,
			Field:       "grace_period_min",
			Description: fmt.Sprintf("Grace period must be between 0 and %d minutes, got %d", constants.MaxGracePeriodMin, d.GracePeriodMin),
		})
	}

	if !utils.ValidateTimezone(d.Timezone) {
		result.add(Conflict{
			Type:        ConflictInvalidTimezone,
			Field:       "timezone",
			Description: fmt.Sprintf("Unknown timezone %q", d.Timezone),
		})
	}

	if d.AnalyticsEndpoint != "" && !strings.HasPrefix(d.AnalyticsEndpoint, "https://") && !strings.HasPrefix(d.AnalyticsEndpoint, "http://") {
		result.add(Conflict{
			Type:        ConflictInvalidEndpoint,
			Field:       "analytics_endpoint",
			Description: fmt.Sprintf("Analytics endpoint must be an http(s) URL, got %q", d.AnalyticsEndpoint),
		})
	}

	return result
}

// Suggest returns known categories that fuzzily match name, best first.
func (v *Validator) Suggest(name string) []string {
	if v.categories == nil || name == "" {
		return nil
	}
	matches := fuzzy.Find(strings.ToLower(name), v.categories.Categories())
	const maxSuggestions = 3
	var out []string
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
