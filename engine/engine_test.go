package engine

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, opts ...Option) *Database {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: "sqlite", Database: ":memory:"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedTable(t *testing.T, cur *Cursor, vals ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := cur.Execute(ctx, "CREATE TABLE t (a INTEGER PRIMARY KEY AUTOINCREMENT, b TEXT NOT NULL)")
	require.NoError(t, err)
	for _, v := range vals {
		_, err := cur.Execute(ctx, "INSERT INTO t (b) VALUES (?)", v)
		require.NoError(t, err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", Username: "u", Database: "d"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported driver")
}

func TestOpenConnectionFailurePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "x.db")
	_, err := Open(context.Background(), Config{Driver: "sqlite", Database: path})
	require.Error(t, err)
}

func TestOpenAppliesDefaults(t *testing.T) {
	db := openMemory(t)
	cfg := db.Config()
	require.Equal(t, "sqlite", cfg.Driver)
	require.Equal(t, DefaultHost, cfg.Host)
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, "sqlite", db.Dialect().Name())
	require.NoError(t, db.Ping(context.Background()))
}

func TestCursorEntriesAreDistinctAndTracked(t *testing.T) {
	db := openMemory(t)

	c1, err := db.Cursor()
	require.NoError(t, err)
	c2, err := db.Cursor()
	require.NoError(t, err)

	require.NotSame(t, c1, c2)
	require.Equal(t, 1, c1.ID())
	require.Equal(t, 2, c2.ID())
	require.Len(t, db.cursors, 2)
	require.Same(t, c1, db.cursors[0])
	require.Same(t, c2, db.cursors[1])
}

func TestCloseReleasesConnectionAndEveryCursor(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	c1, err := db.Cursor()
	require.NoError(t, err)
	c2, err := db.Cursor()
	require.NoError(t, err)
	seedTable(t, c1, "x")

	// Closed by the caller before scope exit; Close must tolerate it.
	require.NoError(t, c2.Close())

	require.NoError(t, db.Close())
	require.True(t, c1.Closed())
	require.True(t, c2.Closed())

	_, err = c1.Execute(ctx, "SELECT * FROM t")
	require.ErrorIs(t, err, ErrCursorClosed)
	_, err = c1.FetchAll()
	require.ErrorIs(t, err, ErrCursorClosed)
	_, err = c2.Columns()
	require.ErrorIs(t, err, ErrCursorClosed)

	_, err = db.Cursor()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, db.Ping(ctx), ErrClosed)

	require.NoError(t, db.Close(), "second Close is a no-op")
}

func TestAutocommitPersistsAcrossDatabases(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Driver: "sqlite", Database: filepath.Join(t.TempDir(), "auto.db")}

	db, err := Open(ctx, cfg)
	require.NoError(t, err)
	cur, err := db.Cursor()
	require.NoError(t, err)
	seedTable(t, cur, "committed")
	require.NoError(t, db.Close())

	db, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()
	cur, err = db.Cursor()
	require.NoError(t, err)
	rows, err := QueryAll(ctx, cur, "SELECT b FROM t")
	require.NoError(t, err)
	require.Equal(t, []Row{{"b": "committed"}}, rows)
}

func TestUseClosesOnError(t *testing.T) {
	db := openMemory(t)
	errBoom := errors.New("boom")

	var captured *Cursor
	err := db.Use(func(cur *Cursor) error {
		captured = cur
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.True(t, captured.Closed())

	_, err = db.Cursor()
	require.ErrorIs(t, err, ErrClosed)
}

func TestUseClosesOnPanic(t *testing.T) {
	db := openMemory(t)

	var captured *Cursor
	require.Panics(t, func() {
		_ = db.Use(func(cur *Cursor) error {
			captured = cur
			panic("boom")
		})
	})
	require.True(t, captured.Closed())
	require.ErrorIs(t, db.Ping(context.Background()), ErrClosed)
}

func TestFromDBLeavesHandleOpen(t *testing.T) {
	ctx := context.Background()
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer raw.Close()

	db, err := FromDB(ctx, raw, Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, raw.PingContext(ctx))
}

func TestFromDBRejectsNilAndUnknownDialect(t *testing.T) {
	ctx := context.Background()
	_, err := FromDB(ctx, nil, Config{Driver: "sqlite"})
	require.Error(t, err)

	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer raw.Close()

	_, err = FromDB(ctx, raw, Config{Driver: "unsupported"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported dialect")
}

func TestOptionErrorAbortsOpen(t *testing.T) {
	errOpt := errors.New("bad option")
	_, err := Open(context.Background(), Config{Driver: "sqlite", Database: ":memory:"}, func(*Database) error {
		return errOpt
	})
	require.ErrorIs(t, err, errOpt)
}
