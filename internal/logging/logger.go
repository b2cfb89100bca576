package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// parseLevel maps a level name to an slog.Level. Unknown names map to warn.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New builds a text logger writing to w. The returned LevelVar can be used to
// change the level after construction. A nil writer means stderr.
func New(level string, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	if w == nil {
		w = os.Stderr
	}
	levels := new(slog.LevelVar)
	levels.Set(parseLevel(level))
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: levels})
	return slog.New(handler), levels
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
