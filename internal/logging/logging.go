// Package logging builds the process-wide structured logger. Every package
// derives its own logger from it via With("module", ...).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger = slog.Logger

// ParseLevel maps a config string to a slog level. Unknown values fall back
// to info; a bad log level should never stop a run.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a JSON logger on stdout at the given level.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with an explicit sink; tests pass a buffer.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With("app", "outreachbot")
}
