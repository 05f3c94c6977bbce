package builder

import (
	"strings"
	"unicode"

	"github.com/nikola-chen/dbutils/dialect"
)

func isSimpleIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// quoteIdentStrict quotes a possibly schema-qualified identifier and rejects
// anything that is not a plain name.
func quoteIdentStrict(d dialect.Dialect, ident string) (string, bool) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", false
	}
	if ident == "*" {
		return "*", true
	}

	parts := strings.Split(ident, ".")
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !isSimpleIdent(p) {
			return "", false
		}
		quoted = append(quoted, d.QuoteIdent(p))
	}
	return strings.Join(quoted, "."), true
}
