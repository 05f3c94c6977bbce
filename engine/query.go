package engine

import (
	"context"
	"errors"
	"iter"

	"github.com/nikola-chen/dbutils/builder"
)

var errNilCursor = errors.New("dbutils: nil cursor")

// Rows is a forward-only, single-pass sequence over an already fetched
// result set.
type Rows struct {
	rows []Row
	pos  int
	cur  Row
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	if r.pos >= len(r.rows) {
		r.cur = nil
		return false
	}
	r.cur = r.rows[r.pos]
	r.rows[r.pos] = nil
	r.pos++
	return true
}

// Row returns the current row.
func (r *Rows) Row() Row { return r.cur }

// All yields the rows not consumed yet. A second pass yields nothing.
func (r *Rows) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for r.Next() {
			if !yield(r.cur) {
				return
			}
		}
	}
}

// QueryAll executes stmt on cur and returns every row in order. The statement
// always goes to the driver as a query, so anything that yields a result set
// (stored procedures, maintenance statements) hands back its rows.
func QueryAll(ctx context.Context, cur *Cursor, stmt string, args ...any) ([]Row, error) {
	if cur == nil {
		return nil, errNilCursor
	}
	if _, err := cur.fetch(ctx, stmt, args); err != nil {
		return nil, err
	}
	return cur.FetchAll()
}

// Query executes stmt on cur and returns the rows as a lazy sequence. The
// whole result set is still read from the driver before Query returns; only
// the caller's iteration is deferred.
func Query(ctx context.Context, cur *Cursor, stmt string, args ...any) (*Rows, error) {
	rows, err := QueryAll(ctx, cur, stmt, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

// Insert writes one row built by concatenating table, cols and vals into the
// statement text, and returns the rows affected. Values are not escaped; see
// builder.LegacyInsert. Prefer InsertArgs for untrusted input.
func Insert(ctx context.Context, cur *Cursor, table string, cols, vals []string) (int64, error) {
	if cur == nil {
		return 0, errNilCursor
	}
	return cur.Execute(ctx, builder.LegacyInsert(cur.dialect, table, cols, vals))
}

// InsertArgs writes one row with quoted identifiers and bound values.
func InsertArgs(ctx context.Context, cur *Cursor, table string, cols []string, vals []any) (int64, error) {
	if cur == nil {
		return 0, errNilCursor
	}
	stmt, args, err := builder.Insert(cur.dialect, table, cols, vals)
	if err != nil {
		return 0, err
	}
	return cur.Execute(ctx, stmt, args...)
}
