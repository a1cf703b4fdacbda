package storage

import (
	"fmt"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
)

// GetPreferences returns the stored preferences, or the defaults when none
// have been saved yet.
func GetPreferences(kv KV) (models.Preferences, error) {
	prefs := models.DefaultPreferences()
	if _, err := GetJSON(kv, constants.KeyPreferences, &prefs); err != nil {
		return models.DefaultPreferences(), fmt.Errorf("failed to get preferences: %w", err)
	}
	if prefs.SelectedCategories == nil {
		prefs.SelectedCategories = []string{}
	}
	return prefs, nil
}

func SavePreferences(kv KV, prefs models.Preferences) error {
	if err := SetJSON(kv, constants.KeyPreferences, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetDeliverySettings returns the stored delivery settings with defaults
// filled in.
func GetDeliverySettings(kv KV) (models.DeliverySettings, error) {
	d := models.DefaultDeliverySettings()
	if _, err := GetJSON(kv, constants.KeyDelivery, &d); err != nil {
		return models.DefaultDeliverySettings(), fmt.Errorf("failed to get delivery settings: %w", err)
	}
	d.ApplyDefaults()
	return d, nil
}

func SaveDeliverySettings(kv KV, d models.DeliverySettings) error {
	if err := SetJSON(kv, constants.KeyDelivery, d); err != nil {
		return fmt.Errorf("failed to save delivery settings: %w", err)
	}
	return nil
}
