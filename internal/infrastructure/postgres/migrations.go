package postgres

import (
	"context"
	"database/sql"
	"embed"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migrateFunc func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

// Migrate applies every pending schema migration.
func (db *Database) Migrate(ctx context.Context) error {
	return db.migrate(ctx, "up", goose.UpContext)
}

// Rollback reverts the most recent schema migration.
func (db *Database) Rollback(ctx context.Context) error {
	return db.migrate(ctx, "down", goose.DownContext)
}

func (db *Database) migrate(ctx context.Context, direction string, run migrateFunc) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("pgx"); err != nil {
		return oops.Code("MIGRATE_DIALECT_FAILED").Wrap(err)
	}
	if err := run(ctx, sqlDB, "migrations"); err != nil {
		return oops.Code("MIGRATE_FAILED").With("direction", direction).Wrap(err)
	}
	return nil
}
