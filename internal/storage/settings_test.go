package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
)

func TestGetPreferencesDefaults(t *testing.T) {
	store := setupJSONStore(t)

	prefs, err := GetPreferences(store)
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if diff := cmp.Diff(models.DefaultPreferences(), prefs); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := setupJSONStore(t)
	want := models.Preferences{
		NotificationsPerDay:   5,
		StartHour:             7,
		EndHour:               21,
		NotificationsEnabled:  true,
		StreakReminderEnabled: false,
		SelectedCategories:    []string{"stoic", "wisdom"},
	}
	if err := SavePreferences(store, want); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	got, err := GetPreferences(store)
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPreferencesCorrupt(t *testing.T) {
	store := setupJSONStore(t)
	if err := store.SetValue(constants.KeyPreferences, "{not json"); err != nil {
		t.Fatal(err)
	}
	prefs, err := GetPreferences(store)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if diff := cmp.Diff(models.DefaultPreferences(), prefs); diff != "" {
		t.Errorf("corrupt value should yield defaults (-want +got):\n%s", diff)
	}
}

func TestGetDeliverySettingsFillsDefaults(t *testing.T) {
	store := setupJSONStore(t)
	if err := store.SetValue(constants.KeyDelivery, `{"telegram_chat_id":42,"grace_period_min":5}`); err != nil {
		t.Fatal(err)
	}
	got, err := GetDeliverySettings(store)
	if err != nil {
		t.Fatalf("GetDeliverySettings() error = %v", err)
	}
	want := models.DeliverySettings{
		Channel:        constants.DefaultDeliveryChannel,
		TelegramChatID: 42,
		GracePeriodMin: 5,
		Timezone:       constants.DefaultTimezone,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}
