package logger

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Init initializes the global slog logger.
// Format "text" selects a colored console handler; anything else is JSON.
func Init(writer io.Writer, level slog.Level, format string) {
	var handler slog.Handler
	if format == "text" {
		handler = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "timestamp"
				}
				if a.Key == slog.LevelKey {
					a.Key = "level"
				}
				if a.Key == slog.MessageKey {
					a.Key = "message"
				}
				return a
			},
		})
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
