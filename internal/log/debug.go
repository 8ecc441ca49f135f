// Package log provides the simplegit debug log. Messages are buffered until a
// destination is configured, then flushed to a size-rotated file.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// DefaultMaxSizeMB is the size at which the debug log is rotated.
const DefaultMaxSizeMB = 10

// DebugLogger handles debug logging to file and/or buffering.
// It implements io.Writer so it can back a zerolog logger.
type DebugLogger struct {
	mu        sync.Mutex
	file      io.WriteCloser
	buffer    []byte
	discard   bool
	maxSizeMB int
}

var (
	globalDebugLogger = &DebugLogger{maxSizeMB: DefaultMaxSizeMB}
	logger            = newLogger(globalDebugLogger)
)

func newLogger(out io.Writer) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05.000",
	}
	return zerolog.New(console).With().Timestamp().Logger()
}

// Write implements io.Writer.
// It writes to the file if set, otherwise appends to the buffer.
func (l *DebugLogger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.discard {
		return len(p), nil
	}

	if l.file != nil {
		return l.file.Write(p)
	}

	// p might be reused by the caller
	b := make([]byte, len(p))
	copy(b, p)
	l.buffer = append(l.buffer, b...)
	return len(p), nil
}

// SetMaxSize sets the rotation threshold in megabytes for files opened afterwards.
func SetMaxSize(megabytes int) {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	if megabytes <= 0 {
		megabytes = DefaultMaxSizeMB
	}
	globalDebugLogger.maxSizeMB = megabytes
}

// SetFile sets the debug log file path. Creates the file if it doesn't exist.
// If path is empty, discards all buffered logs and future logs.
func SetFile(path string) error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file != nil {
		_ = globalDebugLogger.file.Close()
		globalDebugLogger.file = nil
	}

	if path == "" {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return nil
	}

	// lumberjack opens lazily; probe now so a bad path is reported to the caller.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return err
	}
	probe, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return err
	}
	_ = probe.Close()

	f := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    globalDebugLogger.maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}
	globalDebugLogger.file = f
	globalDebugLogger.discard = false

	if len(globalDebugLogger.buffer) > 0 {
		_, _ = f.Write(globalDebugLogger.buffer)
		globalDebugLogger.buffer = nil
	}

	return nil
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	logger.Debug().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Errorf writes a formatted error message.
func Errorf(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}

// With returns a logger tagged with a component name, for structured fields.
func With(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// Close closes the debug log file if open.
func Close() error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file == nil {
		return nil
	}

	err := globalDebugLogger.file.Close()
	globalDebugLogger.file = nil
	return err
}
