// Package git runs the external git binary and parses its machine-readable output.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	log "github.com/chmouel/simplegit/internal/log"
	"github.com/rs/zerolog"
)

// DefaultBinary is the executable used when no override is configured.
const DefaultBinary = "git"

var (
	// ErrBinaryNotFound is wrapped into Result.Err when the git executable cannot be started.
	ErrBinaryNotFound = errors.New("git binary not found")
	// ErrCommandFailed is wrapped into Result.Err when git exits with a non-zero status.
	ErrCommandFailed = errors.New("git command failed")
)

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// Executor runs a single git invocation. Implementations never return a Go error:
// every failure is carried inside the Result.
type Executor interface {
	Execute(ctx context.Context, args []string, dir string) Result
}

// Result is the outcome of one git invocation.
type Result struct {
	Args     []string
	Dir      string
	ExitCode int
	Stdout   string
	Stderr   string
	// Output is stdout and stderr interleaved in arrival order, trailing whitespace trimmed.
	Output   string
	Err      error
	Duration time.Duration
}

// Success reports whether git started and exited with status zero.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Command returns the invocation as it would be typed in a shell.
func (r Result) Command() string {
	return strings.TrimSpace("git " + strings.Join(r.Args, " "))
}

// Text renders the result the way it is shown in the console: the combined output
// on success, an "Error: " prefixed message otherwise.
func (r Result) Text() string {
	if r.Success() {
		return r.Output
	}
	msg := r.Output
	if msg == "" && r.Err != nil {
		msg = r.Err.Error()
	}
	return "Error: " + msg
}

// syncBuffer serialises writes coming from the stdout and stderr copy goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type teeWriter struct {
	own      *bytes.Buffer
	combined *syncBuffer
}

func (t teeWriter) Write(p []byte) (int, error) {
	t.own.Write(p)
	return t.combined.Write(p)
}

// Runner invokes the git binary as a subprocess.
type Runner struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd
	env           []string
	logger        zerolog.Logger
}

// NewRunner builds a Runner for the given binary, falling back to DefaultBinary.
func NewRunner(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{
		binary:        binary,
		commandRunner: exec.CommandContext,
		// git must never wait on a credential prompt: nothing reads the terminal
		// from a background goroutine.
		env:           []string{"GIT_TERMINAL_PROMPT=0", "GIT_OPTIONAL_LOCKS=0"},
		logger:        log.With("git"),
	}
}

// Binary returns the executable this runner invokes.
func (r *Runner) Binary() string {
	return r.binary
}

// Available reports whether the configured binary can be found.
func (r *Runner) Available() bool {
	_, err := LookupPath(r.binary)
	return err == nil
}

// Execute runs git synchronously in dir. It blocks until the process exits and both
// output streams are drained; callers keep it off the interactive goroutine.
func (r *Runner) Execute(ctx context.Context, args []string, dir string) Result {
	start := time.Now()
	res := Result{
		Args:     append([]string{}, args...),
		Dir:      dir,
		ExitCode: -1,
	}
	command := res.Command()
	r.logger.Debug().Str("cmd", command).Str("dir", dir).Msg("run")

	// #nosec G204 -- arguments come from internal operations and are not shell interpolated
	cmd := r.commandRunner(ctx, r.binary, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(os.Environ(), r.env...)

	var stdout, stderr bytes.Buffer
	combined := &syncBuffer{}
	cmd.Stdout = teeWriter{own: &stdout, combined: combined}
	cmd.Stderr = teeWriter{own: &stderr, combined: combined}

	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Output = strings.TrimRight(combined.String(), " \t\r\n")

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
		r.logger.Debug().Str("cmd", command).Dur("elapsed", res.Duration).Msg("ok")
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Err = fmt.Errorf("%w: %s (exit %d)", ErrCommandFailed, command, res.ExitCode)
		r.logger.Debug().Str("cmd", command).Int("exit", res.ExitCode).Str("stderr", strings.TrimSpace(res.Stderr)).Msg("failed")
	case errors.Is(err, exec.ErrNotFound):
		res.Err = fmt.Errorf("%w: %s", ErrBinaryNotFound, r.binary)
		r.logger.Debug().Str("binary", r.binary).Msg("command not found")
	default:
		res.Err = fmt.Errorf("%s: %w", command, err)
		r.logger.Debug().Str("cmd", command).Err(err).Msg("failed to start")
	}
	return res
}
