// Package dialect holds the per-driver SQL details the engine needs:
// placeholders, identifier quoting and how string literals escape.
package dialect

import (
	"strings"
	"sync"
)

// Dialect describes one SQL flavour.
type Dialect interface {
	Name() string
	// Placeholder returns the bind marker for the n-th argument, 1-based.
	Placeholder(n int) string
	// QuoteIdent wraps ident in delimiters, doubling embedded ones.
	QuoteIdent(ident string) string
	// IdentQuote is the bare delimiter, for text built without escaping.
	IdentQuote() string
	// BackslashEscapes reports whether a backslash escapes the next
	// character inside string literals.
	BackslashEscapes() bool
}

var registry = struct {
	sync.RWMutex
	byName map[string]Dialect
}{byName: map[string]Dialect{}}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register makes d available under each of names. Names are case-insensitive;
// a later registration replaces an earlier one.
func Register(d Dialect, names ...string) {
	registry.Lock()
	defer registry.Unlock()
	for _, n := range names {
		registry.byName[key(n)] = d
	}
}

// Get looks up the dialect registered for a driver name.
func Get(name string) (Dialect, bool) {
	registry.RLock()
	defer registry.RUnlock()
	d, ok := registry.byName[key(name)]
	return d, ok && d != nil
}

// MustGet is Get for names known at compile time.
func MustGet(name string) Dialect {
	if d, ok := Get(name); ok {
		return d
	}
	panic("dbutils: unsupported dialect: " + name)
}
