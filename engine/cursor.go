package engine

import (
	"context"
	"strings"

	"github.com/nikola-chen/dbutils/builder"
	"github.com/nikola-chen/dbutils/dialect"
	"github.com/nikola-chen/dbutils/scan"
)

// Row maps column names to the values the driver produced.
type Row = scan.Row

// Cursor executes statements on its Database's connection and buffers the
// rows of the last one.
type Cursor struct {
	id      int
	exec    builder.Executor
	dialect dialect.Dialect

	columns      []string
	rows         []Row
	rowCount     int64
	lastInsertID int64
	closed       bool
}

// ID is the 1-based position of the cursor in its Database.
func (c *Cursor) ID() int { return c.id }

// Closed reports whether Close has been called.
func (c *Cursor) Closed() bool { return c.closed }

// Execute runs stmt. Statements that produce a result set are read to the end
// and the number of rows is returned; anything else returns the rows affected.
// Without args the text is sent to the driver verbatim.
func (c *Cursor) Execute(ctx context.Context, stmt string, args ...any) (int64, error) {
	if c.closed {
		return 0, ErrCursorClosed
	}
	if returnsRows(stmt, c.backslashEscapes()) {
		return c.fetch(ctx, stmt, args)
	}
	c.reset()

	res, err := c.exec.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	// lib/pq has no last insert id.
	if id, err := res.LastInsertId(); err == nil {
		c.lastInsertID = id
	}
	c.rowCount = n
	return n, nil
}

// fetch runs stmt as a query whatever its text and buffers every row. A
// statement without a result set leaves an empty buffer.
func (c *Cursor) fetch(ctx context.Context, stmt string, args []any) (int64, error) {
	if c.closed {
		return 0, ErrCursorClosed
	}
	c.reset()

	rows, err := c.exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	cols, out, err := scan.Rows(rows)
	if err != nil {
		return 0, err
	}
	c.columns = cols
	c.rows = out
	c.rowCount = int64(len(out))
	return c.rowCount, nil
}

func (c *Cursor) backslashEscapes() bool {
	return c.dialect != nil && c.dialect.BackslashEscapes()
}

// FetchAll returns the rows of the last statement not yet fetched.
func (c *Cursor) FetchAll() ([]Row, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	out := c.rows
	c.rows = nil
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

// Columns returns the column names of the last result set.
func (c *Cursor) Columns() ([]string, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	return c.columns, nil
}

// RowCount is the value the last Execute returned.
func (c *Cursor) RowCount() int64 { return c.rowCount }

// LastInsertID is the id generated by the last insert, when the driver
// reports one.
func (c *Cursor) LastInsertID() int64 { return c.lastInsertID }

// Close releases the buffered rows. Closing an already closed cursor is a
// no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.reset()
	c.closed = true
	return nil
}

func (c *Cursor) reset() {
	c.columns = nil
	c.rows = nil
	c.rowCount = 0
	c.lastInsertID = 0
}

var rowKeywords = map[string]struct{}{
	"SELECT":   {},
	"WITH":     {},
	"SHOW":     {},
	"DESCRIBE": {},
	"DESC":     {},
	"EXPLAIN":  {},
	"PRAGMA":   {},
	"VALUES":   {},
	"TABLE":    {},
}

func returnsRows(stmt string, backslash bool) bool {
	kw := leadingKeyword(stmt)
	if _, ok := rowKeywords[kw]; ok {
		return true
	}
	switch kw {
	case "INSERT", "UPDATE", "DELETE", "REPLACE":
		return hasReturning(stmt, backslash)
	}
	return false
}

// hasReturning reports whether RETURNING appears as a keyword, ignoring
// quoted literals, quoted identifiers and comments.
func hasReturning(stmt string, backslash bool) bool {
	for i := 0; i < len(stmt); {
		ch := stmt[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			i = skipQuoted(stmt, i, backslash && ch != '`')
		case ch == '#' || strings.HasPrefix(stmt[i:], "--"):
			j := strings.IndexByte(stmt[i:], '\n')
			if j < 0 {
				return false
			}
			i += j + 1
		case strings.HasPrefix(stmt[i:], "/*"):
			j := strings.Index(stmt[i+2:], "*/")
			if j < 0 {
				return false
			}
			i += j + 4
		case isWordByte(ch):
			j := i
			for j < len(stmt) && isWordByte(stmt[j]) {
				j++
			}
			if strings.EqualFold(stmt[i:j], "RETURNING") {
				return true
			}
			i = j
		default:
			i++
		}
	}
	return false
}

// skipQuoted returns the index just past the quoted section opened at
// stmt[i]. A doubled delimiter escapes it; so does a backslash when
// backslash is set.
func skipQuoted(stmt string, i int, backslash bool) int {
	q := stmt[i]
	for j := i + 1; j < len(stmt); j++ {
		switch stmt[j] {
		case '\\':
			if backslash {
				j++
			}
		case q:
			if j+1 < len(stmt) && stmt[j+1] == q {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(stmt)
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

// leadingKeyword returns the first word of stmt in upper case, skipping
// whitespace, opening parentheses and comments.
func leadingKeyword(stmt string) string {
	s := stmt
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "#"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}
