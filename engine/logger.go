package engine

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NopLogger discards everything. It is the default.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// StdLogger returns the process-wide zerolog logger tagged as dbutils.
func StdLogger() zerolog.Logger {
	return log.Logger.With().Str("component", "dbutils").Logger()
}
