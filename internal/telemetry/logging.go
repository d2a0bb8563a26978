package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel determines the logging level from the environment.
// Possible values: DEBUG, INFO, WARN, ERROR
// Default: INFO
func LogLevel() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the session logger writing to w.
//
// The output format is determined by the LOG_FORMAT variable:
//   - "text" (default): human-readable format for session logs
//   - "json": JSON format for log shippers
//
// The logger is also installed as the slog default so stray log calls
// end up in the session log instead of on the console.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
