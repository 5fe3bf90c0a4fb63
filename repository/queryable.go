package repository

import (
	"context"

	"jackpot/infrastructure/observability"
	"jackpot/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type Queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrConditionFailed is returned when a conditional UPDATE matches no row
var ErrConditionFailed = service.ErrConditionFailed

// measure records the duration of a repository call when metrics are enabled.
// Usage:
//
//	defer measure("account", "GetByKey")()
func measure(repository, method string) func() {
	return observability.GetMetrics().MeasureDatabaseQuery(repository, method)
}
