package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogFilePath is the path to the run log, relative to the working directory.
const LogFilePath = "logs/gridrender.txt"

// Logger stores log lines in memory and appends them to a file on disk. It also mirrors
// each line to an optional console writer. Use Slog for structured logging through it.
type Logger struct {
	mu      sync.Mutex
	path    string
	lines   []string
	console io.Writer
	slog    *slog.Logger
}

// New returns a Logger writing to LogFilePath and mirroring to stderr at the given level.
func New(level slog.Level) *Logger {
	return NewWithPath(LogFilePath, os.Stderr, level)
}

// NewWithPath returns a Logger appending to path (empty disables the file) and mirroring to
// console (nil disables mirroring). The log directory is created if needed.
func NewWithPath(path string, console io.Writer, level slog.Level) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	l := &Logger{path: path, lines: make([]string, 0), console: console}
	l.slog = slog.New(slog.NewTextHandler(l, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Log stamps every line itself.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	return l
}

// Discard returns a Logger that keeps lines in memory only.
func Discard() *Logger {
	return NewWithPath("", nil, slog.LevelDebug)
}

// Slog returns the structured logger backed by l.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Log appends a line prefixed with [timestamp], mirrors it to the console and appends it to the log file.
func (l *Logger) Log(line string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	stamped := "[" + ts + "] " + line

	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	console := l.console
	l.mu.Unlock()

	if console != nil {
		_, _ = io.WriteString(console, stamped+"\n")
	}
	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Write implements io.Writer; each newline-terminated record becomes one Log line.
func (l *Logger) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if s := strings.TrimSpace(string(line)); s != "" {
			l.Log(s)
		}
	}
	return len(p), nil
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
