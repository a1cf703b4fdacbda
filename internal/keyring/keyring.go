package keyring

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/dayquote/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names one credential slot in the OS keyring
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	TelegramToken    Secret = constants.TelegramKeyringUser
	AnalyticsKey     Secret = constants.AnalyticsKeyringUser
)

// envOverrides lets each secret be supplied through the environment instead.
var envOverrides = map[Secret]string{
	ConnectionString: constants.EnvDBConnection,
	TelegramToken:    constants.EnvTelegramToken,
	AnalyticsKey:     constants.EnvAnalyticsKey,
}

// ParseSecret maps a user-facing name to a Secret.
func ParseSecret(name string) (Secret, error) {
	s := Secret(name)
	if _, ok := envOverrides[s]; !ok {
		return "", fmt.Errorf("unknown secret %q (expected one of %v)", name, SecretNames())
	}
	return s, nil
}

// SecretNames lists the known secret names, sorted.
func SecretNames() []string {
	names := make([]string, 0, len(envOverrides))
	for s := range envOverrides {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// EnvVar returns the environment variable that overrides s.
func (s Secret) EnvVar() string {
	return envOverrides[s]
}

// Get retrieves a secret from the OS keyring.
// Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		// Wrap other keyring errors as unavailable
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret in the OS keyring.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes a secret from the OS keyring.
func Delete(s Secret) error {
	err := keyring.Delete(constants.AppName, string(s))
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Resolve returns the secret from its environment variable when set,
// otherwise from the keyring.
func Resolve(s Secret) (string, error) {
	if env := s.EnvVar(); env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	return Get(s)
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) {
	return Get(ConnectionString)
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return Set(ConnectionString, connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return Delete(ConnectionString)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	// If the error is ErrNotFound, the keyring is available but empty
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}
