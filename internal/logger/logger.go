package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogFilePath is the default log file, relative to the working directory (project root when run via go run ./cmd/game).
const LogFilePath = "logs/engine.txt"

// Logger stores lines of text (console input, simulation events) in memory and appends them to a file on disk.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	now   func() time.Time
}

// New returns a Logger writing to path and ensures its directory exists. An empty path means LogFilePath.
func New(path string) *Logger {
	if path == "" {
		path = LogFilePath
	}
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	return &Logger{lines: make([]string, 0), path: path, now: time.Now}
}

// Discard returns a Logger that only keeps lines in memory. Used by tests and headless runs.
func Discard() *Logger {
	return &Logger{lines: make([]string, 0), now: time.Now}
}

// Log appends a line to the logger and, unless discarding, to the log file. Each entry is prefixed with [timestamp] using computer time.
func (l *Logger) Log(line string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	stamped := "[" + ts + "] " + line

	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	l.mu.Unlock()

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

// Logf formats according to a format specifier and logs the result.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Path returns the log file path, or "" for a discarding logger.
func (l *Logger) Path() string {
	return l.path
}
