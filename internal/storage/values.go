package storage

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/dayquote/internal/constants"
)

// GetJSON decodes the value stored under key into dst.
// It reports false without touching dst when the key is absent.
func GetJSON(kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.GetValue(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.SetValue(key, string(data))
}

// EnsureInstallID returns the install id, creating one on first use.
func EnsureInstallID(kv KV) (string, error) {
	var id string
	ok, err := GetJSON(kv, constants.KeyInstallID, &id)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := SetJSON(kv, constants.KeyInstallID, id); err != nil {
		return "", err
	}
	return id, nil
}
