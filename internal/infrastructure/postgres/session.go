package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts query execution over *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type sessionKey struct{}

// WithSession binds db to ctx so repositories use it instead of their pool.
func WithSession(ctx context.Context, db DBTX) context.Context {
	return context.WithValue(ctx, sessionKey{}, db)
}

func sessionFrom(ctx context.Context) (DBTX, bool) {
	db, ok := ctx.Value(sessionKey{}).(DBTX)
	return db, ok && db != nil
}
