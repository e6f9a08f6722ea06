package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger. Production emits JSON for log aggregation,
// every other environment gets human-readable text at debug level.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler).With(
		slog.String("service", "elimufund-api"),
		slog.String("environment", env),
	)
}
