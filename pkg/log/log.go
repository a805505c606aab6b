// Package log configures process-wide structured logging.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the default slog handler at the given level. Unknown level
// names fall back to info.
func Setup(logLevel string) {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(logLevel))

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

// Discard returns a logger that drops everything; tests use it to silence
// components under test.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
