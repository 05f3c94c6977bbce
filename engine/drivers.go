package engine

// Drivers for the dialects in package dialect. mysql and lib/pq are also
// imported directly for DSN building and identifier quoting.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
