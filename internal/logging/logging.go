// Package logging wraps github.com/charmbracelet/log into a single
// process-wide logger writing to stderr, so stdout stays reserved for
// record/flat/text scan output.
//
// Grounded on zfogg-sidechain/cli/pkg/logger.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

// Init initializes the process-wide logger. verbose raises the level to
// Debug; otherwise Info.
func Init(verbose bool) {
	logger = log.New(os.Stderr)
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	logger.SetReportTimestamp(false)
}

func ensure() *log.Logger {
	if logger == nil {
		Init(false)
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...interface{}) { ensure().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...interface{}) { ensure().Info(msg, args...) }

// Warn logs a non-fatal per-file/per-item problem.
func Warn(msg string, args ...interface{}) { ensure().Warn(msg, args...) }

// Error logs an environment or rules-config problem before exit.
func Error(msg string, args ...interface{}) { ensure().Error(msg, args...) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...interface{}) {
	ensure().Error(msg, args...)
	os.Exit(1)
}

// Get returns the underlying logger for callers that need it directly.
func Get() *log.Logger { return ensure() }
