package contract

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Log levels written to the run log file.
const (
	levelInfo  = "INFO"
	levelWarn  = "WARNING"
	levelError = "ERROR"
)

// Logger prints progress lines to the console and, once a run directory exists,
// appends the same lines with a timestamp and level to the run log file.
// It is safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	err  io.Writer
	file io.WriteCloser
	now  func() time.Time
}

// NewLogger creates a logger writing info lines to out and warnings/errors to errOut.
func NewLogger(out, errOut io.Writer) *Logger {
	return &Logger{out: out, err: errOut, now: time.Now}
}

// NewConsoleLogger creates a logger bound to stdout and stderr.
func NewConsoleLogger() *Logger {
	return NewLogger(os.Stdout, os.Stderr)
}

// DiscardLogger returns a logger that drops everything. Useful in tests.
func DiscardLogger() *Logger {
	return NewLogger(io.Discard, io.Discard)
}

// TeeFile appends every subsequent line to the file at path.
func (l *Logger) TeeFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	return nil
}

// Infof logs an informational progress line.
func (l *Logger) Infof(format string, args ...any) {
	l.write(l.out, levelInfo, "", fmt.Sprintf(format, args...))
}

// Warnf logs a warning line.
func (l *Logger) Warnf(format string, args ...any) {
	l.write(l.err, levelWarn, "⚠️  ", fmt.Sprintf(format, args...))
}

// Errorf logs an error line. It never exits.
func (l *Logger) Errorf(format string, args ...any) {
	l.write(l.err, levelError, "❌ ", fmt.Sprintf(format, args...))
}

// Close closes the tee file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) write(console io.Writer, level, prefix, msg string) {
	msg = strings.TrimRight(msg, "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(console, prefix+msg)
	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "%s - %s - %s\n", l.now().Format("2006-01-02 15:04:05"), level, msg)
	}
}
