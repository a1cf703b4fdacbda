package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/dayquote/internal/logger"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("store not loaded"), expected: "Error: store not loaded"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("reschedule: %w", errors.New("platform unavailable")),
			expected: "Error: reschedule: platform unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("unknown category %q", "poetry")
	want := `Error: unknown category "poetry"`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestSwallow(t *testing.T) {
	t.Cleanup(func() { logger.Logger = nil })

	var buf bytes.Buffer
	logger.UseWriter(&buf, log.DebugLevel)

	if Swallow("persist streak log", nil) {
		t.Error("Swallow(nil) reported an error")
	}
	if buf.Len() != 0 {
		t.Errorf("Swallow(nil) logged output: %q", buf.String())
	}

	if !Swallow("persist streak log", errors.New("disk full"), "key", "streak_log") {
		t.Error("Swallow(err) did not report the error")
	}
	out := buf.String()
	if !strings.Contains(out, "persist streak log failed") || !strings.Contains(out, "disk full") {
		t.Errorf("unexpected log output: %q", out)
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		// This is the subprocess - call Fatal
		Fatal(errors.New("storage not initialized"))
		return
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatal")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		// Check that exit code is 1
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		// Check that stderr contains the error message
		stderrStr := stderr.String()
		if !strings.Contains(stderrStr, "Error: storage not initialized") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderrStr, "Error: storage not initialized")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		// This is the subprocess - call Fatal with nil
		Fatal(nil)
		// If we get here, the function returned normally (which is correct)
		os.Exit(0)
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	err := cmd.Run()
	if err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}

// TestFatalf tests the Fatalf function using exec helper process
func TestFatalf(t *testing.T) {
	if os.Getenv("GO_TEST_FATALF") == "1" {
		// This is the subprocess - call Fatalf
		Fatalf("no quotes in category %s", "general")
		return
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatalf")
	cmd.Env = append(os.Environ(), "GO_TEST_FATALF=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		// Check that exit code is 1
		if e.ExitCode() != 1 {
			t.Errorf("Fatalf() exit code = %d, want 1", e.ExitCode())
		}
		// Check that stderr contains the formatted error message
		stderrStr := stderr.String()
		if !strings.Contains(stderrStr, "Error: no quotes in category general") {
			t.Errorf("Fatalf() stderr = %q, want to contain %q", stderrStr, "Error: no quotes in category general")
		}
	} else {
		t.Errorf("Fatalf() did not exit with error: %v", err)
	}
}
