package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the shared logger. It falls back to slog's default until Init runs.
var L = slog.Default()

// Init installs a JSON logger on stdout at the given level.
// Call this once at startup, after loading config.
func Init(levelStr string) {
	InitWithWriter(levelStr, os.Stdout)
}

// InitWithWriter is Init with a custom destination.
func InitWithWriter(levelStr string, w io.Writer) {
	level, ok := ParseLevel(levelStr)
	if !ok {
		slog.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", levelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	L.Debug("Logger initialized", "level", level.String())
}

// ParseLevel maps a LOG_LEVEL value onto a slog level. Unknown values map to info.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
