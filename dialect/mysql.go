package dialect

import (
	"strings"
	"sync"
)

// quoteCache caches backtick-quoted identifiers. Shared by mysql and sqlite,
// which quote identically.
var quoteCache sync.Map

// maxCachedIdentLen keeps long or generated identifiers out of the cache.
const maxCachedIdentLen = 64

type mysqlDialect struct{}

func (d mysqlDialect) Name() string { return "mysql" }

func (d mysqlDialect) Placeholder(n int) string { return "?" }

func (d mysqlDialect) QuoteIdent(ident string) string { return backtickQuote(ident) }

func (d mysqlDialect) IdentQuote() string { return "`" }

// MySQL treats backslash as an escape unless NO_BACKSLASH_ESCAPES is set.
func (d mysqlDialect) BackslashEscapes() bool { return true }

// sqliteDialect accepts MySQL-style backtick identifiers and ? placeholders.
type sqliteDialect struct{}

func (d sqliteDialect) Name() string { return "sqlite" }

func (d sqliteDialect) Placeholder(n int) string { return "?" }

func (d sqliteDialect) QuoteIdent(ident string) string { return backtickQuote(ident) }

func (d sqliteDialect) IdentQuote() string { return "`" }

func (d sqliteDialect) BackslashEscapes() bool { return false }

func backtickQuote(ident string) string {
	if ident == "" {
		return "``"
	}

	if cached, ok := quoteCache.Load(ident); ok {
		return cached.(string)
	}

	if strings.IndexByte(ident, '`') == -1 {
		result := "`" + ident + "`"
		if len(ident) <= maxCachedIdentLen {
			quoteCache.Store(ident, result)
		}
		return result
	}

	var result strings.Builder
	result.Grow(len(ident) + 2)
	result.WriteByte('`')
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		if c == '`' {
			result.WriteString("``")
		} else {
			result.WriteByte(c)
		}
	}
	result.WriteByte('`')
	return result.String()
}

func init() {
	Register(mysqlDialect{}, "mysql")
	Register(sqliteDialect{}, "sqlite")
}
