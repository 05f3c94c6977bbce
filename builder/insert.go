package builder

import (
	"bytes"
	"errors"
	"strings"

	"github.com/nikola-chen/dbutils/dialect"
)

// LegacyInsert assembles an INSERT statement by plain concatenation:
//
//	INSERT INTO <table> (`c1`,`c2`) VALUES ('v1','v2')
//
// Nothing is escaped. A value containing a single quote ends the literal
// early, so callers must only pass trusted text. Use Insert for bound values.
func LegacyInsert(d dialect.Dialect, table string, cols, vals []string) string {
	q := "`"
	if d != nil {
		q = d.IdentQuote()
	}

	var buf strings.Builder
	buf.Grow(32 + len(table) + 4*len(cols) + 4*len(vals))
	buf.WriteString("INSERT INTO ")
	buf.WriteString(table)
	buf.WriteString(" (")
	buf.WriteString(q)
	buf.WriteString(strings.Join(cols, q+","+q))
	buf.WriteString(q)
	buf.WriteString(") VALUES ('")
	buf.WriteString(strings.Join(vals, "','"))
	buf.WriteString("')")
	return buf.String()
}

// Insert builds a single-row INSERT with quoted identifiers and one
// placeholder per value.
func Insert(d dialect.Dialect, table string, cols []string, vals []any) (string, []any, error) {
	if d == nil {
		return "", nil, errors.New("dbutils: missing dialect for insert")
	}
	if strings.TrimSpace(table) == "" {
		return "", nil, errors.New("dbutils: missing table for insert")
	}
	if len(cols) == 0 {
		return "", nil, errors.New("dbutils: missing columns for insert")
	}
	if len(vals) != len(cols) {
		return "", nil, errors.New("dbutils: insert values length mismatch columns")
	}

	qt, ok := quoteIdentStrict(d, table)
	if !ok {
		return "", nil, errors.New("dbutils: invalid table name: " + table)
	}

	var buf bytes.Buffer
	buf.Grow(64)
	buf.WriteString("INSERT INTO ")
	buf.WriteString(qt)
	buf.WriteString(" (")
	for i, c := range cols {
		qc, ok := quoteIdentStrict(d, c)
		if !ok || qc == "*" {
			return "", nil, errors.New("dbutils: invalid column name: " + c)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(qc)
	}
	buf.WriteString(") VALUES (")
	for i := range vals {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(d.Placeholder(i + 1))
	}
	buf.WriteString(")")

	args := make([]any, len(vals))
	copy(args, vals)
	return buf.String(), args, nil
}
