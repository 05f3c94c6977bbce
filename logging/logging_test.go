package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, LevelFor(0))
	require.Equal(t, zerolog.DebugLevel, LevelFor(1))
	require.Equal(t, zerolog.TraceLevel, LevelFor(2))
	require.Equal(t, zerolog.TraceLevel, LevelFor(5))
}

func TestOutputsWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "dbutil.log")

	w := outputs(&console, path)
	logger := zerolog.New(w)
	logger.Info().Str("db", "unittest").Msg("Database connection established")

	require.Contains(t, console.String(), "Database connection established")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "db=unittest")
}

func TestOutputsConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger := zerolog.New(outputs(&console, ""))
	logger.Warn().Msg("slow statement")
	require.Contains(t, console.String(), "slow statement")
}
