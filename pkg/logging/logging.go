package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a slog.Logger writing to stderr using the provided level and format.
// Format "text" renders human-readable lines; anything else emits JSON.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination. stdout must never be used
// while serving, since it carries the protocol stream.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	l := parseLevel(level)

	if strings.EqualFold(format, "text") {
		handler := log.NewWithOptions(w, log.Options{
			Level:           log.Level(l),
			ReportTimestamp: true,
			Prefix:          "confluence-mcp",
		})
		return slog.New(handler)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
