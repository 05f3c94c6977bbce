package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/nikola-chen/dbutils/builder"
)

type loggingExecutor struct {
	inner  builder.Executor
	logger zerolog.Logger
	cfg    Config
}

func (l *loggingExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := l.inner.ExecContext(ctx, query, args...)
	l.log(query, args, time.Since(start), err)
	return res, err
}

func (l *loggingExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := l.inner.QueryContext(ctx, query, args...)
	l.log(query, args, time.Since(start), err)
	return rows, err
}

func (l *loggingExecutor) log(query string, args []any, dur time.Duration, err error) {
	slow := l.cfg.SlowQuery > 0 && dur >= l.cfg.SlowQuery
	if !l.cfg.LogSQL && !slow {
		return
	}

	var ev *zerolog.Event
	switch {
	case err != nil:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			ev = l.logger.Info().Err(err)
		} else {
			ev = l.logger.Warn().Err(err)
		}
	case slow:
		ev = l.logger.Warn().Bool("slow", true)
	default:
		ev = l.logger.Info()
	}

	ev = ev.Str("sql", truncateSQL(query, l.cfg.MaxLogSQLLen)).Dur("dur", dur)
	if l.cfg.LogArgs {
		ev = ev.Array("args", argsArray(args, l.cfg.ArgFormatter, l.cfg.MaxLogArgsItems, l.cfg.MaxLogArgsLen))
	} else {
		ev = ev.Int("argc", len(args))
	}
	ev.Msg("SQL executed")
}

const (
	defaultMaxLogSQLLen    = 2048
	defaultMaxLogArgsItems = 20
	defaultMaxLogArgsLen   = 512
)

// truncateSQL cuts stmt to maxLen bytes on a rune boundary.
func truncateSQL(stmt string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultMaxLogSQLLen
	}
	if len(stmt) <= maxLen {
		return stmt
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(stmt[cut]) {
		cut--
	}
	return stmt[:cut] + "…"
}

// argsArray renders args as a log array. At most maxItems entries are
// written and maxLen bytes spent; "…" marks where rendering stopped.
func argsArray(args []any, format func(any) string, maxItems, maxLen int) *zerolog.Array {
	if maxItems <= 0 {
		maxItems = defaultMaxLogArgsItems
	}
	if maxLen <= 0 {
		maxLen = defaultMaxLogArgsLen
	}
	if format == nil {
		format = redact
	}

	arr := zerolog.Arr()
	spent := 0
	for i, a := range args {
		if i == maxItems {
			arr.Str("…")
			break
		}
		s := format(a)
		spent += len(s)
		if spent > maxLen {
			arr.Str(s[:len(s)-(spent-maxLen)] + "…")
			break
		}
		arr.Str(s)
	}
	return arr
}

// redact hides anything that may carry user data. Numbers, booleans and
// NULL are shown as is; strings and byte slices only by length.
func redact(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	case string:
		return "<string len=" + strconv.Itoa(len(x)) + ">"
	case []byte:
		return "<bytes len=" + strconv.Itoa(len(x)) + ">"
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func (e *Database) executor() builder.Executor {
	if !e.cfg.LogSQL && e.cfg.SlowQuery <= 0 {
		return e.conn
	}
	return &loggingExecutor{inner: e.conn, logger: e.logger, cfg: e.cfg}
}
