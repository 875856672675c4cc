package logger

import (
	"log/slog"
	"time"
)

// LogSweep logs the outcome of one sweep pass
func LogSweep(msg string, duration time.Duration, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "sweep"),
		slog.Duration("took", duration),
	}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
