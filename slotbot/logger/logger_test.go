package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithWriter(&buf, slog.LevelInfo))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("Sweep completed", slog.String("type", "sweep"), slog.Int("expired", 2))
	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "[SWEEP]")
	assert.Contains(t, out, "Sweep completed")
	assert.Contains(t, out, "expired=2")
	assert.NotContains(t, out, "type=sweep")
}

func TestCustomHandler_ErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithWriter(&buf, slog.LevelInfo))

	log.Error("Command failed",
		slog.String("type", "cmd"),
		slog.String("name", "slot create"),
		slog.String("user_name", "alice"),
		slog.Any("error", errors.New("boom")),
		slog.String("error_location", "slot.go:42"),
	)
	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "[CMD]")
	assert.Contains(t, out, "Command failed (slot.go:42): boom [slot create by alice]")
}

func TestCustomHandler_SkipsGatewayNoise(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithWriter(&buf, slog.LevelDebug))

	log.Debug("sending heartbeat")
	log.Debug("locking rest bucket")
	assert.Empty(t, buf.String())
}

func TestCustomHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithWriter(&buf, slog.LevelInfo)).With(slog.String("guild_id", "42"))

	log.Info("Provisioned staff slots")
	assert.Contains(t, buf.String(), "guild_id=42")
	assert.Contains(t, buf.String(), "[SYS]")
}

func TestGetLogType(t *testing.T) {
	assert.Equal(t, TypeCommand, getLogType(map[string]string{"type": "component"}))
	assert.Equal(t, TypeDB, getLogType(map[string]string{"type": "db"}))
	assert.Equal(t, TypeError, getLogType(map[string]string{"type": "error"}))
	assert.Equal(t, TypeSystem, getLogType(map[string]string{}))
}
