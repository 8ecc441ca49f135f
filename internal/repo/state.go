// Package repo holds the in-memory snapshot of a repository and rebuilds it from git.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chmouel/simplegit/internal/git"
	log "github.com/chmouel/simplegit/internal/log"
	"github.com/chmouel/simplegit/internal/models"
)

// Queries issued by every refresh.
var (
	currentBranchArgs = []string{"rev-parse", "--abbrev-ref", "HEAD"}
	branchListArgs    = []string{"branch", "-a"}
	statusArgs        = []string{"status", "--porcelain"}
)

// State owns the published snapshot of one repository. Refresh is the only writer.
type State struct {
	exec git.Executor
	dir  string

	// refreshMu makes concurrent refreshes take turns so the last published
	// snapshot always comes from exactly one complete refresh.
	refreshMu  sync.Mutex
	snapshot   atomic.Pointer[models.Snapshot]
	generation atomic.Uint64
	now        func() time.Time
}

// New creates an empty state for the repository at dir.
func New(exec git.Executor, dir string) *State {
	s := &State{
		exec: exec,
		dir:  dir,
		now:  time.Now,
	}
	s.snapshot.Store(models.EmptySnapshot())
	return s
}

// Dir returns the repository working directory.
func (s *State) Dir() string {
	return s.dir
}

// Snapshot returns the latest published snapshot. It never waits for a refresh.
func (s *State) Snapshot() *models.Snapshot {
	return s.snapshot.Load()
}

// Generation returns the generation of the latest published snapshot.
func (s *State) Generation() uint64 {
	return s.Snapshot().Generation
}

type queryResult struct {
	name string
	res  git.Result
}

// Refresh re-queries current branch, branch list and status, then publishes the
// new snapshot in a single store. The queries run concurrently; readers keep
// seeing the previous snapshot until all three are done. A snapshot is published
// even when some queries fail; the returned error lists them.
func (s *State) Refresh(ctx context.Context) (*models.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	queries := []struct {
		name string
		args []string
	}{
		{"current-branch", currentBranchArgs},
		{"branches", branchListArgs},
		{"status", statusArgs},
	}
	results := make([]queryResult, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, name string, args []string) {
			defer wg.Done()
			results[i] = queryResult{name: name, res: s.exec.Execute(ctx, args, s.dir)}
		}(i, q.name, q.args)
	}
	wg.Wait()

	var errs []error
	var failed []string
	for _, r := range results {
		if !r.res.Success() {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, r.res.Err))
			failed = append(failed, r.name)
		}
	}

	next := &models.Snapshot{
		Branches: models.BranchSet{
			Current: strings.TrimSpace(results[0].res.Stdout),
			All:     git.ParseBranches(results[1].res.Stdout),
		},
		Generation:  s.generation.Add(1),
		RefreshedAt: s.now(),
		Errors:      failed,
	}
	next.Staged, next.Unstaged = git.SplitStatus(git.ParseStatus(strings.TrimRight(results[2].res.Stdout, "\n")))
	s.snapshot.Store(next)

	log.Printf("refresh: %s gen=%d branch=%s staged=%d unstaged=%d (%s)",
		s.dir, next.Generation, next.Branches.Current, len(next.Staged), len(next.Unstaged), s.now().Sub(start).Round(time.Millisecond))

	return next, errors.Join(errs...)
}

// Summary renders the status bar line for a snapshot.
func Summary(snap *models.Snapshot) string {
	if snap == nil {
		return ""
	}
	return fmt.Sprintf("Repository refreshed - %d staged, %d changed", len(snap.Staged), len(snap.Unstaged))
}
