package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

const slowQueryThreshold = 500 * time.Millisecond

// queryHook logs failed and slow queries with the db log type. With verbose
// set every query is logged at debug level.
type queryHook struct {
	verbose bool
}

var _ bun.QueryHook = (*queryHook)(nil)

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	attrs := []any{
		slog.String("type", "db"),
		slog.String("operation", event.Operation()),
		slog.Duration("took", duration),
	}

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		slog.ErrorContext(ctx, "Query failed", append(attrs,
			slog.String("query", event.Query),
			slog.Any("error", event.Err),
		)...)
		return
	}

	if duration > slowQueryThreshold {
		slog.WarnContext(ctx, "Query executed slowly", append(attrs,
			slog.String("query", event.Query),
			slog.String("status", "slow"),
		)...)
		return
	}

	if h.verbose {
		if event.Result != nil {
			if n, err := event.Result.RowsAffected(); err == nil {
				attrs = append(attrs, slog.Int64("affected_rows", n))
			}
		}
		slog.DebugContext(ctx, "Query executed", append(attrs,
			slog.String("query", event.Query),
		)...)
	}
}
