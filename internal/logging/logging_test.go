package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupFiltersByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("store", "listas"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "store=listas")
	assert.Same(t, logger, slog.Default())
}

func TestOpenFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "despensa.log")

	w, err := OpenFile(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("linha\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "linha\n", string(data))
}

func TestOpenFileEmptyPathDiscards(t *testing.T) {
	w, err := OpenFile("")
	require.NoError(t, err)
	n, err := w.Write([]byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, w.Close())
}
