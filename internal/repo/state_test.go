package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chmouel/simplegit/internal/git"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]git.Result
	calls     []string
}

func (f *fakeExecutor) Execute(_ context.Context, args []string, _ string) git.Result {
	key := strings.Join(args, " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if res, ok := f.responses[key]; ok {
		res.Args = args
		return res
	}
	return git.Result{Args: args}
}

func ok(stdout string) git.Result {
	return git.Result{Stdout: stdout, Output: strings.TrimRight(stdout, "\n")}
}

func TestNewStateIsEmpty(t *testing.T) {
	s := New(&fakeExecutor{}, "/repo")
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Branches.Current)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Zero(t, s.Generation())
	assert.Equal(t, "/repo", s.Dir())
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]git.Result{
		"rev-parse --abbrev-ref HEAD": ok("main\n"),
		"branch -a":                   ok("* main\n  dev\n  remotes/origin/HEAD -> origin/main\n  remotes/origin/main\n"),
		"status --porcelain":          ok(" M edited.go\nM  staged.go\nAM both.go\n?? new.txt\n"),
	}}
	s := New(exec, "/repo")

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "main", snap.Branches.Current)
	assert.Equal(t, []string{"main", "dev", "remotes/origin/main"}, snap.Branches.All)
	assert.Equal(t, []models.FileChangeEntry{
		{Path: "staged.go", IndexStatus: 'M', WorktreeStatus: ' '},
		{Path: "both.go", IndexStatus: 'A', WorktreeStatus: 'M'},
	}, snap.Staged)
	assert.Equal(t, []models.FileChangeEntry{
		{Path: "edited.go", IndexStatus: ' ', WorktreeStatus: 'M'},
		{Path: "both.go", IndexStatus: 'A', WorktreeStatus: 'M'},
		{Path: "new.txt", IndexStatus: '?', WorktreeStatus: '?'},
	}, snap.Unstaged)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Same(t, snap, s.Snapshot())
	assert.Empty(t, snap.Errors)
	assert.ElementsMatch(t, []string{"rev-parse --abbrev-ref HEAD", "branch -a", "status --porcelain"}, exec.calls)
	assert.Equal(t, "Repository refreshed - 2 staged, 3 changed", Summary(snap))
}

func TestRefreshReportsFailedQueries(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]git.Result{
		"rev-parse --abbrev-ref HEAD": {ExitCode: 128, Err: fmt.Errorf("%w: not a repo", git.ErrCommandFailed)},
		"branch -a":                   ok("* main\n"),
		"status --porcelain":          ok(""),
	}}
	s := New(exec, "/repo")

	snap, err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrCommandFailed)
	assert.Contains(t, err.Error(), "current-branch")
	assert.Equal(t, []string{"current-branch"}, snap.Errors)
	assert.Equal(t, []string{"main"}, snap.Branches.All)
	assert.Same(t, snap, s.Snapshot())
}

func TestRefreshGenerationsIncrease(t *testing.T) {
	s := New(&fakeExecutor{}, "/repo")
	first, _ := s.Refresh(context.Background())
	second, _ := s.Refresh(context.Background())
	assert.Less(t, first.Generation, second.Generation)
	assert.Equal(t, second.Generation, s.Generation())
}

// versionedExecutor answers the n-th call of each query with data tagged "vN" and
// sleeps a little so concurrent refreshes would interleave without serialization.
type versionedExecutor struct {
	mu     sync.Mutex
	counts map[string]int
}

func (v *versionedExecutor) Execute(_ context.Context, args []string, _ string) git.Result {
	key := strings.Join(args, " ")
	v.mu.Lock()
	v.counts[key]++
	n := v.counts[key]
	v.mu.Unlock()

	delay := time.Duration(n%3) * time.Millisecond
	if key == "status --porcelain" {
		delay = time.Duration(3-n%3) * time.Millisecond
	}
	time.Sleep(delay)

	switch key {
	case "rev-parse --abbrev-ref HEAD":
		return ok(fmt.Sprintf("branch-v%d\n", n))
	case "branch -a":
		return ok(fmt.Sprintf("* branch-v%d\n", n))
	default:
		return ok(fmt.Sprintf("M  file-v%d.txt\n", n))
	}
}

func consistentVersion(t *testing.T, snap *models.Snapshot) string {
	t.Helper()
	version := strings.TrimPrefix(snap.Branches.Current, "branch-")
	assert.Equal(t, []string{"branch-" + version}, snap.Branches.All)
	if assert.Len(t, snap.Staged, 1) {
		assert.Equal(t, "file-"+version+".txt", snap.Staged[0].Path)
	}
	return version
}

func TestConcurrentRefreshesNeverMix(t *testing.T) {
	exec := &versionedExecutor{counts: map[string]int{}}
	s := New(exec, "/repo")

	const refreshes = 20
	var wg sync.WaitGroup
	snaps := make([]*models.Snapshot, refreshes)
	for i := 0; i < refreshes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := s.Refresh(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}

	// Readers never observe a half-built snapshot.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			snap := s.Snapshot()
			if snap.Generation > 0 {
				consistentVersion(t, snap)
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()

	wg.Wait()
	<-done

	for _, snap := range snaps {
		consistentVersion(t, snap)
	}
	final := s.Snapshot()
	assert.Equal(t, uint64(refreshes), final.Generation)
	assert.Equal(t, fmt.Sprintf("v%d", refreshes), consistentVersion(t, final))
}
