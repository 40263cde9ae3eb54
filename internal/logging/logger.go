package logging

import (
	"log/slog"
	"os"
)

// NewLogger returns a structured text logger for the auction service.
// Debug mode lowers the level so per-bid validation logging shows up.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
