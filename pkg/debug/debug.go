// Package debug provides conditional debug logging for rv.
//
// Debug logging is enabled by setting the RV_DEBUG environment variable:
//
//	RV_DEBUG=1 rv --data rows.json
//
// The TUI owns stdout, so messages go to stderr, or to the file named by
// RV_DEBUG_FILE when set. When disabled (default), all functions are no-ops.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when RV_DEBUG env var is set
	enabled bool
	// logger writes with [RV_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("RV_DEBUG") != "" {
		SetOutput(defaultOutput())
		enabled = true
	}
}

func defaultOutput() io.Writer {
	if path := os.Getenv("RV_DEBUG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return f
		}
		log.Printf("warning: cannot open debug log %s: %v", path, err)
	}
	return os.Stderr
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		SetOutput(os.Stderr)
	}
}

// SetOutput redirects debug output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	logger = log.New(w, "[RV_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("layout")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
