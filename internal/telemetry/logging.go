package telemetry

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the JSON logger used across the service.
// Attributes whose key looks like a credential are replaced with [REDACTED].
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if shouldRedactKey(a.Key) {
				return slog.String(a.Key, "[REDACTED]")
			}
			if a.Value.Kind() == slog.KindString && strings.Contains(strings.ToLower(a.Value.String()), "bearer ") {
				return slog.String(a.Key, "[REDACTED]")
			}
			return a
		},
	})
	return slog.New(handler).With("component", "api")
}

func shouldRedactKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	if lower == "" {
		return false
	}
	for _, token := range []string{"token", "secret", "password", "authorization", "api_key", "apikey"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
