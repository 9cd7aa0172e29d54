package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line: %s", line)
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	logger, err := New(&Config{
		Level:       LevelDebug,
		LogDir:      logDir,
		MaxLogFiles: 5,
		MaxLogAge:   24 * time.Hour,
		MaxSizeMB:   1,
	})
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(logDir)
	require.NoError(t, err, "log directory was not created")
	assert.Equal(t, filepath.Join(logDir, LogFileName), logger.LogPath())

	logger.Info("hello", "target", "alpha")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"target":"alpha"`)
}

func TestNewWithoutLogDir(t *testing.T) {
	logger, err := New(&Config{Level: LevelInfo})
	require.NoError(t, err)
	assert.Empty(t, logger.LogPath())
	logger.Info("discarded")
	assert.NoError(t, logger.Close())
}

func TestNewNoop(t *testing.T) {
	logger := NewNoop()
	require.NotNil(t, logger)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	assert.NoError(t, logger.Close())
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug)

	logger.Warn("delete failed", "path", "a/b.py", "error", errors.New("permission denied"), "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "a/b.py", lines[0]["path"])
	assert.Equal(t, "permission denied", lines[0]["error"])
	assert.Equal(t, "", lines[0]["dangling"])
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug).With("stage", "components").Component("prune")

	logger.Info("removed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "components", lines[0]["stage"])
	assert.Equal(t, "prune", lines[0]["component"])
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug)

	w := logger.Writer(LevelInfo)
	_, err := w.Write([]byte("line one\nline two\npartial"))
	require.NoError(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "line one", lines[0]["message"])
	assert.Equal(t, "line two", lines[1]["message"])

	w.(*logWriter).Flush()
	lines = decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "partial", lines[2]["message"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, ".compprune/logs", cfg.LogDir)
	assert.Equal(t, 10, cfg.MaxLogFiles)
	assert.Equal(t, 7*24*time.Hour, cfg.MaxLogAge)
	assert.True(t, cfg.Console)
}
