package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.txt")
	var console bytes.Buffer
	l := NewWithPath(path, &console, slog.LevelInfo)
	l.Log("hello")

	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] hello$`, lines[0])
	assert.Equal(t, lines[0]+"\n", console.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, lines[0]+"\n", string(data))
}

func TestSlogRespectsLevel(t *testing.T) {
	l := NewWithPath("", nil, slog.LevelInfo)
	l.Slog().Debug("hidden")
	l.Slog().Info("creating core grid", "cells", 8)
	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `msg="creating core grid" cells=8`)
	assert.NotContains(t, lines[0], "time=")
}

func TestLinesIsACopy(t *testing.T) {
	l := Discard()
	l.Log("a")
	lines := l.Lines()
	lines[0] = "changed"
	assert.NotEqual(t, "changed", l.Lines()[0])
}

func TestNewWritesDefaultLogFile(t *testing.T) {
	t.Chdir(t.TempDir())
	l := New(slog.LevelDebug)
	l.Slog().Debug("generating", "cells", 8)

	data, err := os.ReadFile(LogFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG msg=generating cells=8")
}
