package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDebugLogger(t *testing.T) func() {
	t.Helper()

	globalDebugLogger.mu.Lock()
	prevFile := globalDebugLogger.file
	prevBuffer := append([]byte(nil), globalDebugLogger.buffer...)
	prevDiscard := globalDebugLogger.discard
	globalDebugLogger.file = nil
	globalDebugLogger.buffer = nil
	globalDebugLogger.discard = false
	globalDebugLogger.mu.Unlock()

	return func() {
		globalDebugLogger.mu.Lock()
		if globalDebugLogger.file != nil {
			_ = globalDebugLogger.file.Close()
		}
		globalDebugLogger.file = prevFile
		globalDebugLogger.buffer = prevBuffer
		globalDebugLogger.discard = prevDiscard
		globalDebugLogger.mu.Unlock()
	}
}

func TestBufferedLogsFlushToFile(t *testing.T) {
	t.Cleanup(resetDebugLogger(t))

	Printf("run: %s (cwd=%s)", "git status", "/repo")
	Println("before", "file")

	logPath := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, SetFile(logPath))

	Printf("after file")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "run: git status (cwd=/repo)")
	assert.Contains(t, content, "before file")
	assert.Contains(t, content, "after file")
	assert.Less(t, strings.Index(content, "before file"), strings.Index(content, "after file"))
}

func TestSetFileEmptyDiscards(t *testing.T) {
	t.Cleanup(resetDebugLogger(t))

	Printf("buffered")
	require.NoError(t, SetFile(""))
	Printf("dropped")

	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	assert.True(t, globalDebugLogger.discard)
	assert.Empty(t, globalDebugLogger.buffer)
}

func TestSetFileFailureDiscardsLogs(t *testing.T) {
	t.Cleanup(resetDebugLogger(t))
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	unwritableDir := t.TempDir()
	require.NoError(t, os.Chmod(unwritableDir, 0o500)) //nolint:gosec
	t.Cleanup(func() {
		_ = os.Chmod(unwritableDir, 0o700) //nolint:gosec
	})

	logPath := filepath.Join(unwritableDir, "debug.log")
	require.Error(t, SetFile(logPath))

	Printf("should be discarded")

	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	assert.True(t, globalDebugLogger.discard)
	assert.Empty(t, globalDebugLogger.buffer)
}

func TestWithAddsComponent(t *testing.T) {
	t.Cleanup(resetDebugLogger(t))

	l := With("tasks")
	l.Debug().Str("task", "refresh").Msg("submitted")

	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	out := string(globalDebugLogger.buffer)
	assert.Contains(t, out, "component=tasks")
	assert.Contains(t, out, "task=refresh")
	assert.Contains(t, out, "submitted")
}
