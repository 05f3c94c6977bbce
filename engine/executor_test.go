package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func renderArgs(arr *zerolog.Array) string {
	var buf bytes.Buffer
	zerolog.New(&buf).Log().Array("args", arr).Send()
	return buf.String()
}

func TestArgsArrayRedactsByDefault(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := renderArgs(argsArray([]any{strings.Repeat("a", 33), []byte{1, 2, 3}, 7, true, nil, when, struct{}{}}, nil, 0, 0))
	require.Equal(t, `{"args":["<string len=33>","<bytes len=3>","7","true","null","2024-05-01T12:00:00Z","<struct {}>"]}`+"\n", out)
}

func TestArgsArrayCustomFormatter(t *testing.T) {
	out := renderArgs(argsArray([]any{1, "x"}, func(any) string { return "X" }, 0, 0))
	require.Equal(t, `{"args":["X","X"]}`+"\n", out)
}

func TestArgsArrayLimits(t *testing.T) {
	out := renderArgs(argsArray([]any{1, 2, 3}, nil, 2, 0))
	require.Equal(t, `{"args":["1","2","…"]}`+"\n", out)

	out = renderArgs(argsArray([]any{123456, 7}, nil, 0, 3))
	require.Equal(t, `{"args":["123…"]}`+"\n", out)
}

func TestTruncateSQL(t *testing.T) {
	require.Equal(t, "SELECT 1", truncateSQL("SELECT 1", 0))
	require.Equal(t, "SELE…", truncateSQL("SELECT 1", 4))
	require.Equal(t, "SELECT '…", truncateSQL("SELECT 'é'", 9))
}

func TestExecutorLogsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	db, err := Open(context.Background(), Config{
		Driver:   "sqlite",
		Database: ":memory:",
		LogSQL:   true,
		LogArgs:  true,
	}, WithLogger(logger))
	require.NoError(t, err)
	defer db.Close()

	cur, err := db.Cursor()
	require.NoError(t, err)
	_, err = QueryAll(context.Background(), cur, "SELECT ? AS v", "secret")
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"sql":"SELECT ? AS v"`)
	require.Contains(t, out, `"args":["<string len=6>"]`)
	require.NotContains(t, out, "secret")
}

func TestExecutorLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open(context.Background(), Config{
		Driver:   "sqlite",
		Database: ":memory:",
		LogSQL:   true,
	}, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	defer db.Close()

	cur, err := db.Cursor()
	require.NoError(t, err)
	_, err = cur.Execute(context.Background(), "INSERT INTO missing (a) VALUES (1)")
	require.Error(t, err)

	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"argc":0`)
}

func TestExecutorSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open(context.Background(), Config{Driver: "sqlite", Database: ":memory:"}, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	defer db.Close()

	_, isLogging := db.exec.(*loggingExecutor)
	require.False(t, isLogging)

	cur, err := db.Cursor()
	require.NoError(t, err)
	_, err = QueryAll(context.Background(), cur, "SELECT 1")
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "SQL executed")
}

func TestExecutorSlowQueryOnly(t *testing.T) {
	var buf bytes.Buffer
	l := &loggingExecutor{logger: zerolog.New(&buf), cfg: Config{SlowQuery: time.Second}}

	l.log("SELECT fast", nil, time.Millisecond, nil)
	require.Empty(t, buf.String())

	l.log("SELECT slow", nil, 2*time.Second, nil)
	require.Contains(t, buf.String(), `"slow":true`)
	require.Contains(t, buf.String(), "SELECT slow")
}
