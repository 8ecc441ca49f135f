package ops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/chmouel/simplegit/internal/log"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// lockDir returns where per-repository lock files live. It is outside the
// repository so the working tree is only ever touched by git itself.
func lockDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "simplegit", "locks")
}

// repoLock is an advisory cross-process lock serialising mutating operations
// between simplegit processes working on the same repository.
type repoLock struct {
	lock *flock.Flock
}

func newRepoLock(dir, repoPath string) *repoLock {
	sum := sha256.Sum256([]byte(filepath.Clean(repoPath)))
	name := hex.EncodeToString(sum[:8]) + ".lock"
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Printf("repo lock: cannot create %s: %v", dir, err)
		return &repoLock{}
	}
	return &repoLock{lock: flock.New(filepath.Join(dir, name))}
}

// Acquire blocks until the lock is held or ctx is done. Without a usable lock
// file it degrades to a no-op.
func (l *repoLock) Acquire(ctx context.Context) (func(), error) {
	if l == nil || l.lock == nil {
		return func() {}, nil
	}
	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("waiting for repository lock: %w", ctx.Err())
		}
		log.Printf("repo lock: %s unavailable, continuing without it: %v", l.lock.Path(), err)
		return func() {}, nil
	}
	if !locked {
		return nil, fmt.Errorf("repository lock %s not acquired", l.lock.Path())
	}
	return func() { _ = l.lock.Unlock() }, nil
}

// Path returns the lock file path, or "" when locking is disabled.
func (l *repoLock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}
