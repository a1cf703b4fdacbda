package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/quotes"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	catalog, err := quotes.Bundled()
	if err != nil {
		t.Fatalf("Bundled() error = %v", err)
	}
	return New(catalog)
}

func conflictTypes(result ValidationResult) []ConflictType {
	var types []ConflictType
	for _, c := range result.Conflicts {
		types = append(types, c.Type)
	}
	return types
}

func TestValidatePreferences(t *testing.T) {
	v := newValidator(t)
	base := models.DefaultPreferences()

	tests := []struct {
		name   string
		modify func(p *models.Preferences)
		want   []ConflictType
	}{
		{"defaults", func(p *models.Preferences) {}, nil},
		{"zero count allowed", func(p *models.Preferences) { p.NotificationsPerDay = 0 }, nil},
		{"max count allowed", func(p *models.Preferences) { p.NotificationsPerDay = constants.MaxNotificationsPerDay }, nil},
		{"negative count", func(p *models.Preferences) { p.NotificationsPerDay = -1 }, []ConflictType{ConflictCountOutOfRange}},
		{"too many", func(p *models.Preferences) { p.NotificationsPerDay = constants.MaxNotificationsPerDay + 1 }, []ConflictType{ConflictCountOutOfRange}},
		{"full day window", func(p *models.Preferences) { p.StartHour, p.EndHour = 0, 24 }, nil},
		{"start after end", func(p *models.Preferences) { p.StartHour, p.EndHour = 20, 8 }, []ConflictType{ConflictInvalidWindow}},
		{"empty window", func(p *models.Preferences) { p.StartHour, p.EndHour = 9, 9 }, []ConflictType{ConflictInvalidWindow}},
		{"end past midnight", func(p *models.Preferences) { p.EndHour = 25 }, []ConflictType{ConflictInvalidWindow}},
		{"known categories", func(p *models.Preferences) { p.SelectedCategories = []string{"stoic", "wisdom"} }, nil},
		{"unknown category", func(p *models.Preferences) { p.SelectedCategories = []string{"poetry"} }, []ConflictType{ConflictUnknownCategory}},
		{"duplicate category", func(p *models.Preferences) { p.SelectedCategories = []string{"stoic", "stoic"} }, []ConflictType{ConflictDuplicateCategory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.SelectedCategories = nil
			tt.modify(&p)
			result := v.ValidatePreferences(p)
			if diff := cmp.Diff(tt.want, conflictTypes(result)); diff != "" {
				t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
			}
			if (result.Err() != nil) != (len(tt.want) > 0) {
				t.Errorf("Err() = %v", result.Err())
			}
		})
	}
}

func TestUnknownCategorySuggestions(t *testing.T) {
	v := newValidator(t)
	p := models.DefaultPreferences()
	p.SelectedCategories = []string{"stoc"}

	result := v.ValidatePreferences(p)
	if len(result.Conflicts) != 1 {
		t.Fatalf("conflicts = %+v", result.Conflicts)
	}
	c := result.Conflicts[0]
	if len(c.Suggestions) == 0 || c.Suggestions[0] != "stoic" {
		t.Errorf("Suggestions = %v, want stoic first", c.Suggestions)
	}
	if !strings.Contains(c.Description, "did you mean stoic") {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestSuggestWithoutCatalog(t *testing.T) {
	v := New(nil)
	if got := v.Suggest("stoic"); got != nil {
		t.Errorf("Suggest() = %v, want nil", got)
	}
	p := models.DefaultPreferences()
	p.SelectedCategories = []string{"anything"}
	if result := v.ValidatePreferences(p); result.HasConflicts() {
		t.Errorf("unexpected conflicts without a catalog: %v", result.Conflicts)
	}
}

func TestValidateDelivery(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name   string
		modify func(d *models.DeliverySettings)
		want   []ConflictType
	}{
		{"defaults", func(d *models.DeliverySettings) {}, nil},
		{"stdout", func(d *models.DeliverySettings) { d.Channel = constants.DeliveryStdout }, nil},
		{"telegram with chat", func(d *models.DeliverySettings) {
			d.Channel = constants.DeliveryTelegram
			d.TelegramChatID = 99
		}, nil},
		{"telegram without chat", func(d *models.DeliverySettings) { d.Channel = constants.DeliveryTelegram }, []ConflictType{ConflictMissingChatID}},
		{"unknown channel", func(d *models.DeliverySettings) { d.Channel = "pigeon" }, []ConflictType{ConflictInvalidChannel}},
		{"negative grace", func(d *models.DeliverySettings) { d.GracePeriodMin = -1 }, []ConflictType{ConflictGracePeriod}},
		{"grace too long", func(d *models.DeliverySettings) { d.GracePeriodMin = constants.MaxGracePeriodMin + 1 }, []ConflictType{ConflictGracePeriod}},
		{"iana timezone", func(d *models.DeliverySettings) { d.Timezone = "Europe/Berlin" }, nil},
		{"bad timezone", func(d *models.DeliverySettings) { d.Timezone = "Mars/Olympus" }, []ConflictType{ConflictInvalidTimezone}},
		{"https endpoint", func(d *models.DeliverySettings) { d.AnalyticsEndpoint = "https://example.com/capture" }, nil},
		{"bad endpoint", func(d *models.DeliverySettings) { d.AnalyticsEndpoint = "ftp://example.com" }, []ConflictType{ConflictInvalidEndpoint}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.DefaultDeliverySettings()
			tt.modify(&d)
			if diff := cmp.Diff(tt.want, conflictTypes(v.ValidateDelivery(d))); diff != "" {
				t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatReport(t *testing.T) {
	var empty ValidationResult
	if got := empty.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}

	r := ValidationResult{Conflicts: []Conflict{{Description: "one"}, {Description: "two"}}}
	if got, want := r.FormatReport(), "Conflicts detected:\n- one\n- two\n"; got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}
	if err := r.Err(); err == nil || err.Error() != "invalid settings:\n- one\n- two" {
		t.Errorf("Err() = %v", err)
	}
}
