package logger

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

type QueryLogger struct {
	Operation string
	Query     string
	Args      []interface{}
	StartTime time.Time
}

func NewQueryLogger(operation, query string, args ...any) *QueryLogger {
	return &QueryLogger{
		Operation: operation,
		Query:     query,
		Args:      args,
		StartTime: time.Now(),
	}
}

// Log reports the query at debug level, or at warn level once it took longer than slow.
func (l *QueryLogger) Log(err error, rowsAffected int64, slow time.Duration) {
	duration := time.Since(l.StartTime)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", l.Operation),
			slog.String("query", l.Query),
			slog.Any("args", l.Args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return
	}

	level := slog.LevelDebug
	if slow > 0 && duration >= slow {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "Query executed",
		slog.String("type", "db"),
		slog.String("operation", l.Operation),
		slog.String("query", l.Query),
		slog.Any("args", l.Args),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", rowsAffected),
	)
}

// QueryHook feeds every bun query through a QueryLogger.
type QueryHook struct {
	SlowThreshold time.Duration
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(slow time.Duration) *QueryHook {
	return &QueryHook{SlowThreshold: slow}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	ql := &QueryLogger{
		Operation: event.Operation(),
		Query:     event.Query,
		StartTime: event.StartTime,
	}

	var rows int64
	if event.Result != nil {
		rows, _ = event.Result.RowsAffected()
	}
	err := event.Err
	// lookups that find nothing are not failures
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	ql.Log(err, rows, h.SlowThreshold)
}
