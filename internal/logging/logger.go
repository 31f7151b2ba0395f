package logging

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger appropriate for the
// environment. Production uses JSON format, development uses
// human-readable text at debug level. Logs go to stderr so command
// output on stdout stays machine-readable.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler

	if env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
