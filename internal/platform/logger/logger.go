package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output keeps log lines machine
// readable for the audit pipeline consumers.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level(),
	}))
}

func level() slog.Level {
	if os.Getenv("TICKETDESK_DEBUG") == "true" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
