package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nevermore/internal/config"
)

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("production logs json", func(t *testing.T) {
		var buf bytes.Buffer
		log := Setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)
		WithSession(log, "abc").Info("Dialogue started", "node", "intro_gate")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Dialogue started", entry["msg"])
		assert.Equal(t, "abc", entry["session_id"])
		assert.Equal(t, "intro_gate", entry["node"])
	})

	t.Run("development logs text and honours level", func(t *testing.T) {
		var buf bytes.Buffer
		log := Setup(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)
		log.Info("hidden")
		WithError(log, errors.New("boom")).Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "error=boom")
	})
}

func TestOpenFile(t *testing.T) {
	w, closeFn, err := OpenFile(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "nevermore.log")
	w, closeFn, err = OpenFile(&config.Config{LogFile: path})
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
