// Package logging provides the application's structured logger, a thin
// wrapper around slog.
package logging

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with application-specific construction.
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger at the given level. Unknown levels fall back to
// info.
func New(level string) *Logger {
	return newLogger(level, false)
}

// NewText creates a human-readable logger for local development.
func NewText(level string) *Logger {
	return newLogger(level, true)
}

func newLogger(level string, text bool) *Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Default returns a JSON logger at info level.
func Default() *Logger {
	return New("info")
}

// With returns a logger carrying the given attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
