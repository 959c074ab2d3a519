// Package twinlog centralizes the leveled logger factory used by every
// subsystem in this module, following the same LoggerFactory-handed-down-at-
// construction convention the rest of the corpus uses for pion/logging.
package twinlog

import "github.com/pion/logging"

// Factory is the logger factory every component config accepts. It is a
// type alias so callers can pass a *logging.DefaultLoggerFactory directly.
type Factory = logging.LoggerFactory

// Logger is the per-scope leveled logger handed out by a Factory.
type Logger = logging.LeveledLogger

// NewDefaultFactory returns a logging.DefaultLoggerFactory configured at
// the given level, for use by callers who don't need custom log routing.
func NewDefaultFactory(level logging.LogLevel) Factory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = level
	return f
}

// Scoped returns a logger for scope, or nil if f is nil. Callers follow the
// same "if config.LoggerFactory != nil" / "if c.log != nil" guard used
// throughout this module rather than paying for a no-op logger.
func Scoped(f Factory, scope string) Logger {
	if f == nil {
		return nil
	}
	return f.NewLogger(scope)
}
