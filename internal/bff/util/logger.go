package util

import (
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

// InitLogger installs the process-wide JSON logger. level is one of
// debug, info, warn, error; anything else means info.
func InitLogger(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Logger = slog.New(handler).With("service", "school-bff")
	slog.SetDefault(Logger)
}

func GetLogger() *slog.Logger {
	if Logger == nil {
		InitLogger("info")
	}
	return Logger
}

func parseLevel(level string) slog.Level {
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
