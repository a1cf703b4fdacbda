// Package errors holds the error conventions shared by the CLI and the daemon:
// user-facing formatting at the command boundary and the log-and-continue path
// used for best-effort work (persistence writes, analytics, deliveries).
package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/dayquote/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Swallow logs err as a warning tagged with op and drops it.
// It reports whether an error was present.
func Swallow(op string, err error, keyvals ...interface{}) bool {
	if err == nil {
		return false
	}
	logger.Warn(op+" failed", append([]interface{}{"error", err}, keyvals...)...)
	return true
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
