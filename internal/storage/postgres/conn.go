package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/dayquote/internal/constants"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// connParams returns the connection parameters keyed by lower-cased name. For
// URLs a password in the userinfo is reported as "password".
func connParams(connStr string) map[string]string {
	out := make(map[string]string)
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k, v := range u.Query() {
			out[strings.ToLower(k)] = strings.Join(v, ",")
		}
		if pw, ok := u.User.Password(); ok {
			out["password"] = pw
		}
		return out
	}
	for _, pair := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func hasParam(connStr, key string) bool {
	_, ok := connParams(connStr)[key]
	return ok
}

// withSearchPath points unqualified table names at the application schema
// unless the caller chose a search_path already.
func withSearchPath(connStr string) (string, error) {
	if hasParam(connStr, "search_path") {
		return connStr, nil
	}
	if !isURL(connStr) {
		return strings.TrimSpace(connStr) + " search_path=" + constants.AppName, nil
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return connStr, err
	}
	q := u.Query()
	q.Set("search_path", constants.AppName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ValidateConnString reports whether connStr is a usable PostgreSQL URI or
// DSN that carries no password. The error says what is wrong otherwise.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" && u.User == nil && strings.Trim(u.Path, "/") == "" {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}
	if hasParam(connStr, "password") {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}
