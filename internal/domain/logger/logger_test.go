package logger

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestQueryHook_AfterQuery(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		start time.Time
		want  string
		skip  string
	}{
		{name: "fast query", start: time.Now(), want: "level=DEBUG"},
		{name: "slow query", start: time.Now().Add(-2 * time.Second), want: "level=WARN"},
		{name: "no rows", err: sql.ErrNoRows, start: time.Now(), want: "level=DEBUG", skip: "level=ERROR"},
		{name: "failure", err: errors.New("boom"), start: time.Now(), want: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, slog.LevelDebug)
			hook := NewQueryHook(time.Second)
			hook.AfterQuery(context.Background(), &bun.QueryEvent{
				Query:     "SELECT 1",
				StartTime: tt.start,
				Err:       tt.err,
			})
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "type=db")
			if tt.skip != "" {
				assert.NotContains(t, buf.String(), tt.skip)
			}
		})
	}
}
