// Package dbutils is a small convenience layer over database/sql: it opens a
// single autocommit connection, hands out cursors that are all released when
// the connection is closed, runs queries that return field-name rows, and
// wraps functions so each call gets its own managed connection.
package dbutils

import (
	"context"

	"github.com/nikola-chen/dbutils/engine"
)

type (
	Database = engine.Database
	Cursor   = engine.Cursor
	Rows     = engine.Rows
	Row      = engine.Row
	Config   = engine.Config
	Option   = engine.Option
)

var (
	ErrClosed       = engine.ErrClosed
	ErrCursorClosed = engine.ErrCursorClosed
)

// Open connects with cfg. See engine.Open.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Database, error) {
	return engine.Open(ctx, cfg, opts...)
}

// Query runs stmt and returns its rows as a single-pass sequence.
func Query(ctx context.Context, cur *Cursor, stmt string, args ...any) (*Rows, error) {
	return engine.Query(ctx, cur, stmt, args...)
}

// QueryAll runs stmt and returns every row.
func QueryAll(ctx context.Context, cur *Cursor, stmt string, args ...any) ([]Row, error) {
	return engine.QueryAll(ctx, cur, stmt, args...)
}

// Insert writes one row by string concatenation. Values are not escaped.
func Insert(ctx context.Context, cur *Cursor, table string, cols, vals []string) (int64, error) {
	return engine.Insert(ctx, cur, table, cols, vals)
}

// InsertArgs writes one row with bound values.
func InsertArgs(ctx context.Context, cur *Cursor, table string, cols []string, vals []any) (int64, error) {
	return engine.InsertArgs(ctx, cur, table, cols, vals)
}

// WithDB wraps fn so each call runs with a fresh cursor. See engine.WithDB.
func WithDB[A, R any](cfg Config, fn func(context.Context, *Cursor, A) (R, error), opts ...Option) func(context.Context, A) (R, error) {
	return engine.WithDB(cfg, fn, opts...)
}

// Do runs fn with a cursor on a fresh connection.
func Do(ctx context.Context, cfg Config, fn func(context.Context, *Cursor) error, opts ...Option) error {
	return engine.Do(ctx, cfg, fn, opts...)
}
