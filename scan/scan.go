package scan

import (
	"database/sql"
	"strings"
	"sync"
)

// Row is one result row addressed by field name.
type Row map[string]any

// Get returns the value of col. An exact key match wins; otherwise the
// lookup ignores case, quoting and any table prefix.
func (r Row) Get(col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	want := normalizeColumn(col)
	for k, v := range r {
		if normalizeColumn(k) == want {
			return v, true
		}
	}
	return nil, false
}

var anySlicePool sync.Pool

const maxPooledAnySliceCap = 4096

func getAnySlice(n int) []any {
	if v := anySlicePool.Get(); v != nil {
		s := v.([]any)
		if cap(s) >= n {
			return s[:n]
		}
	}
	return make([]any, n)
}

func putAnySlice(s []any) {
	if s == nil {
		return
	}
	for i := range s {
		s[i] = nil
	}
	if cap(s) > maxPooledAnySliceCap {
		return
	}
	anySlicePool.Put(s)
}

// Rows drains rows into field-name rows and closes it. Values keep the type
// the driver produced; byte slices are copied because drivers may reuse them.
func Rows(rows *sql.Rows) ([]string, []Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	n := len(cols)
	holders := getAnySlice(n)
	defer putAnySlice(holders)
	for i := range holders {
		var v any
		holders[i] = &v
	}

	out := make([]Row, 0)
	for rows.Next() {
		if err := rows.Scan(holders...); err != nil {
			return nil, nil, err
		}
		m := make(Row, n)
		for i, c := range cols {
			p := holders[i].(*any)
			m[c] = copyValue(*p)
			*p = nil
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

func copyValue(raw any) any {
	switch b := raw.(type) {
	case []byte:
		c := make([]byte, len(b))
		copy(c, b)
		return c
	case sql.RawBytes:
		c := make([]byte, len(b))
		copy(c, b)
		return c
	default:
		return raw
	}
}

func normalizeColumn(c string) string {
	c = strings.TrimSpace(c)
	c = strings.ReplaceAll(c, "`", "")
	c = strings.ReplaceAll(c, "\"", "")
	if i := strings.LastIndexByte(c, '.'); i >= 0 {
		c = c[i+1:]
	}
	return strings.ToLower(c)
}
