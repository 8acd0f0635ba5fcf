package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info("quiet")
	l.Warn("loud", "k", "v")
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
	require.Contains(t, buf.String(), "k=v")
}

func TestOpenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "marksmart.log")
	l, closeFn, err := Open(path, "info")
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "logger initialized")
	require.Contains(t, string(data), "hello")
}

func TestOpenEmptyPathDiscards(t *testing.T) {
	l, closeFn, err := Open("", "debug")
	require.NoError(t, err)
	l.Info("dropped")
	require.NoError(t, closeFn())
}
