package store

import (
	"context"
	"database/sql"
	"errors"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func build() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func execQ(ctx context.Context, q querier, b entsql.Querier) (sql.Result, error) {
	query, args := b.Query()
	return q.ExecContext(ctx, query, args...)
}

func queryQ(ctx context.Context, q querier, b entsql.Querier) (*sql.Rows, error) {
	query, args := b.Query()
	return q.QueryContext(ctx, query, args...)
}

func queryRowQ(ctx context.Context, q querier, b entsql.Querier) *sql.Row {
	query, args := b.Query()
	return q.QueryRowContext(ctx, query, args...)
}

// withTx runs fn in a transaction. Errors other than *NotFoundError are
// reported as *StorageError for op.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

func storageErr(op string, err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	var owned *OwnedKeyError
	if errors.As(err, &owned) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// anySlice converts ids to predicate arguments.
func anySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// chunks splits ids into groups that stay below SQLite's bound-variable
// limit.
func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

const maxVars = 500

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
