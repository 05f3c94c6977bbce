package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nikola-chen/dbutils/builder"
	"github.com/nikola-chen/dbutils/dialect"
)

var (
	// ErrClosed is returned by a Database after Close.
	ErrClosed = errors.New("dbutils: database is closed")
	// ErrCursorClosed is returned by a Cursor after Close.
	ErrCursorClosed = errors.New("dbutils: cursor is closed")
)

// Option is a function to configure the Database.
type Option func(*Database) error

// WithLogger sets the logger for the Database.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Database) error {
		e.logger = logger
		return nil
	}
}

// Database owns exactly one driver connection and every cursor drawn from it.
// Statements run in autocommit mode. A Database is meant for one short unit
// of work and is not safe for concurrent use.
type Database struct {
	cfg     Config
	db      *sql.DB
	ownsDB  bool
	conn    *sql.Conn
	exec    builder.Executor
	dialect dialect.Dialect
	logger  zerolog.Logger
	cursors []*Cursor
	closed  bool
}

// Open connects using cfg. Connection errors are returned as is; nothing is
// retried.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Database, error) {
	cfg = cfg.withDefaults()
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("dbutils: open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return open(ctx, db, true, cfg, opts)
}

// FromDB pins one connection from an existing handle. The handle stays owned
// by the caller; Close releases only the pinned connection. cfg.Driver picks
// the dialect.
func FromDB(ctx context.Context, db *sql.DB, cfg Config, opts ...Option) (*Database, error) {
	if db == nil {
		return nil, errors.New("dbutils: nil *sql.DB")
	}
	return open(ctx, db, false, cfg.withDefaults(), opts)
}

func open(ctx context.Context, db *sql.DB, owns bool, cfg Config, opts []Option) (*Database, error) {
	fail := func(err error) (*Database, error) {
		if owns {
			_ = db.Close()
		}
		return nil, err
	}

	d, ok := dialect.Get(cfg.Driver)
	if !ok {
		return fail(errors.New("dbutils: unsupported dialect: " + cfg.Driver))
	}

	e := &Database{
		cfg:     cfg,
		db:      db,
		ownsDB:  owns,
		dialect: d,
		logger:  NopLogger(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return fail(err)
		}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fail(fmt.Errorf("dbutils: connect: %w", err))
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return fail(fmt.Errorf("dbutils: ping: %w", err))
	}
	e.conn = conn
	e.exec = e.executor()

	e.logger.Debug().
		Str("driver", cfg.Driver).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("db", cfg.Database).
		Msg("Database connection established")

	return e, nil
}

// Config returns the configuration the Database was opened with, defaults applied.
func (e *Database) Config() Config {
	return e.cfg
}

// Dialect returns the database dialect.
func (e *Database) Dialect() dialect.Dialect {
	return e.dialect
}

// Ping verifies the pinned connection is still alive.
func (e *Database) Ping(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	return e.conn.PingContext(ctx)
}

// Cursor opens a new cursor on the connection and records it so Close can
// release it. Cursors are never dropped from the record before Close.
func (e *Database) Cursor() (*Cursor, error) {
	if e.closed {
		return nil, ErrClosed
	}
	c := &Cursor{
		id:      len(e.cursors) + 1,
		exec:    e.exec,
		dialect: e.dialect,
	}
	e.cursors = append(e.cursors, c)
	return c, nil
}

// Close closes every recorded cursor, then the connection. Every step runs
// even if an earlier one failed; the failures are joined. Closing twice is a
// no-op.
func (e *Database) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for _, c := range e.cursors {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.conn != nil {
		if err := e.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, fmt.Errorf("dbutils: close connection: %w", err))
		}
	}
	if e.ownsDB {
		if err := e.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dbutils: close driver: %w", err))
		}
	}

	err := errors.Join(errs...)
	e.logger.Debug().Err(err).Int("cursors", len(e.cursors)).Msg("Database connection closed")
	return err
}

// Use enters a cursor, runs fn with it and closes the Database on every exit
// path, panics included.
func (e *Database) Use(fn func(*Cursor) error) (err error) {
	defer func() {
		if cerr := e.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	cur, err := e.Cursor()
	if err != nil {
		return err
	}
	return fn(cur)
}
