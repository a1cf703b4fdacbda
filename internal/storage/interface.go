package storage

import (
	"errors"

	"github.com/julianstephens/dayquote/internal/models"
)

var (
	ErrNotInitialized  = errors.New("storage not initialized, run 'dayquote init' first")
	ErrNotLoaded       = errors.New("storage not loaded")
	ErrTriggerNotFound = errors.New("trigger not found")
)

// KV is the key/value surface used for preferences, the streak log and flags.
// Values are opaque strings, JSON encoded by convention.
type KV interface {
	GetValue(key string) (string, bool, error)
	SetValue(key, value string) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Values
	KV
	GetAllValues() (map[string]string, error)

	// Scheduled triggers
	AddTrigger(models.Trigger) error
	GetAllTriggers() ([]models.Trigger, error)
	// DeleteAllTriggers removes every trigger and returns how many were removed.
	DeleteAllTriggers() (int, error)
	// MarkTriggerFired records the local day a trigger was delivered on.
	MarkTriggerFired(id, day string) error

	// Utils
	GetConfigPath() string
}
