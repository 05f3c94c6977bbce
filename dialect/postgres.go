package dialect

import (
	"strconv"

	"github.com/lib/pq"
)

var postgresPlaceholders = [...]string{
	"$1", "$2", "$3", "$4", "$5", "$6", "$7", "$8", "$9", "$10",
	"$11", "$12", "$13", "$14", "$15", "$16", "$17", "$18", "$19", "$20",
}

type postgresDialect struct{}

func (d postgresDialect) Name() string { return "postgres" }

func (d postgresDialect) Placeholder(n int) string {
	if n > 0 && n <= len(postgresPlaceholders) {
		return postgresPlaceholders[n-1]
	}
	return "$" + strconv.Itoa(n)
}

func (d postgresDialect) QuoteIdent(ident string) string {
	return pq.QuoteIdentifier(ident)
}

func (d postgresDialect) IdentQuote() string { return `"` }

// Standard-conforming strings are the default since PostgreSQL 9.1.
func (d postgresDialect) BackslashEscapes() bool { return false }

func init() {
	Register(postgresDialect{}, "postgres", "postgresql")
}
