package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adboard/backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// Kind describes how rows of one entity type map onto a table.
type Kind[T any, K comparable] struct {
	// Name is the entity name used in error codes, e.g. "user".
	Name  string
	Table string
	// Key is the identity column.
	Key string
	// Columns lists the data columns in Values/Fields order.
	Columns []string
	// AutoKey marks identities assigned by the database on insert.
	AutoKey bool

	KeyOf func(item *T) K
	// IsNew tells Add whether item still has to be inserted.
	IsNew func(item *T) bool
	// Values returns the values for Columns.
	Values func(item *T) []any
	// Fields returns scan targets for Key followed by Columns.
	Fields func(item *T) []any

	NotFound error
	Conflict error
}

// Repository implements domain.Repository for a single Kind.
type Repository[T any, K comparable] struct {
	pool DBTX
	kind Kind[T, K]

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewRepository constructs a repository and prepares its statements.
func NewRepository[T any, K comparable](pool DBTX, kind Kind[T, K]) *Repository[T, K] {
	all := append([]string{kind.Key}, kind.Columns...)

	insertCols := all
	if kind.AutoKey {
		insertCols = kind.Columns
	}
	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		kind.Table, strings.Join(insertCols, ", "), strings.Join(placeholders, ", "))
	if kind.AutoKey {
		insertSQL += " RETURNING " + kind.Key
	}

	assignments := make([]string, len(kind.Columns))
	for i, col := range kind.Columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}

	return &Repository[T, K]{
		pool:      pool,
		kind:      kind,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", strings.Join(all, ", "), kind.Table, kind.Key),
		insertSQL: insertSQL,
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = $1", kind.Table, strings.Join(assignments, ", "), kind.Key),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE %s = $1", kind.Table, kind.Key),
	}
}

// Get fetches an item by identity.
func (r *Repository[T, K]) Get(ctx context.Context, id K) (*T, error) {
	return r.get(ctx, r.db(ctx), r.selectSQL, r.kind.Key, id)
}

// FindBy fetches the single item whose column equals value. column must be
// one of the kind's columns.
func (r *Repository[T, K]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1",
		r.kind.Key, strings.Join(r.kind.Columns, ", "), r.kind.Table, column)
	return r.get(ctx, r.db(ctx), query, column, value)
}

// Add inserts new items and writes modified ones back.
func (r *Repository[T, K]) Add(ctx context.Context, item *T) error {
	db := r.db(ctx)
	if r.kind.IsNew(item) {
		return r.insert(ctx, db, item)
	}
	return r.save(ctx, db, item)
}

// Update locks the row, applies patch and persists the result in a single
// transaction. Nothing is written when any step fails.
func (r *Repository[T, K]) Update(ctx context.Context, id K, patch domain.Patch[T]) (*T, error) {
	var updated *T
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		item, err := r.get(ctx, tx, r.selectSQL+" FOR UPDATE", r.kind.Key, id)
		if err != nil {
			return err
		}
		patch.Apply(item)
		if err := r.save(ctx, tx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an item by identity.
func (r *Repository[T, K]) Delete(ctx context.Context, id K) error {
	tag, err := r.db(ctx).Exec(ctx, r.deleteSQL, id)
	if err != nil {
		return r.wrapWrite(err, "DELETE_FAILED")
	}
	if tag.RowsAffected() == 0 {
		return r.notFound(r.kind.Key, id)
	}
	return nil
}

func (r *Repository[T, K]) db(ctx context.Context) DBTX {
	if session, ok := sessionFrom(ctx); ok {
		return session
	}
	return r.pool
}

func (r *Repository[T, K]) get(ctx context.Context, db DBTX, query, column string, arg any) (*T, error) {
	item := new(T)
	if err := db.QueryRow(ctx, query, arg).Scan(r.kind.Fields(item)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound(column, arg)
		}
		return nil, oops.Code(r.code("GET_FAILED")).
			With("table", r.kind.Table).
			Wrap(err)
	}
	return item, nil
}

func (r *Repository[T, K]) insert(ctx context.Context, db DBTX, item *T) error {
	values := r.kind.Values(item)
	if r.kind.AutoKey {
		if err := db.QueryRow(ctx, r.insertSQL, values...).Scan(r.kind.Fields(item)[0]); err != nil {
			return r.wrapWrite(err, "INSERT_FAILED")
		}
		return nil
	}
	args := append([]any{r.kind.KeyOf(item)}, values...)
	if _, err := db.Exec(ctx, r.insertSQL, args...); err != nil {
		return r.wrapWrite(err, "INSERT_FAILED")
	}
	return nil
}

func (r *Repository[T, K]) save(ctx context.Context, db DBTX, item *T) error {
	id := r.kind.KeyOf(item)
	args := append([]any{id}, r.kind.Values(item)...)
	tag, err := db.Exec(ctx, r.updateSQL, args...)
	if err != nil {
		return r.wrapWrite(err, "UPDATE_FAILED")
	}
	if tag.RowsAffected() == 0 {
		return r.notFound(r.kind.Key, id)
	}
	return nil
}

func (r *Repository[T, K]) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db(ctx).Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").With("table", r.kind.Table).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return r.wrapWrite(err, "TX_COMMIT_FAILED")
	}
	return nil
}

func (r *Repository[T, K]) wrapWrite(err error, code string) error {
	if constraint, ok := isUniqueViolation(err); ok {
		return oops.Code(r.code("CONFLICT")).
			With("constraint", constraint).
			Wrap(r.kind.Conflict)
	}
	return oops.Code(r.code(code)).
		With("table", r.kind.Table).
		Wrap(err)
}

func (r *Repository[T, K]) notFound(column string, value any) error {
	return oops.Code(r.code("NOT_FOUND")).
		With(column, value).
		Wrap(r.kind.NotFound)
}

func (r *Repository[T, K]) code(suffix string) string {
	return strings.ToUpper(r.kind.Name) + "_" + suffix
}
