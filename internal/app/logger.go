package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app's isolated logger from the configured level and
// format strings. The process-global default is left untouched so embedding
// hosts keep their own.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps a config level string to slog's scale, defaulting to info.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
