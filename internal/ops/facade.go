// Package ops composes the git runner and repository state into the operations
// the user triggers: staging, committing, syncing with the remote and branching.
package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chmouel/simplegit/internal/config"
	"github.com/chmouel/simplegit/internal/git"
	log "github.com/chmouel/simplegit/internal/log"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/chmouel/simplegit/internal/repo"
)

// Facade runs operations against one open repository. At most one mutating
// operation is in flight at a time; the others wait their turn.
type Facade struct {
	exec  git.Executor
	repo  Repository
	cfg   *config.AppConfig
	state *repo.State

	mu   sync.Mutex
	lock *repoLock
}

// New creates a Facade for r. A nil cfg uses the defaults.
func New(exec git.Executor, r Repository, cfg *config.AppConfig) *Facade {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Facade{
		exec:  exec,
		repo:  r,
		cfg:   cfg,
		state: repo.New(exec, r.Path),
		lock:  newRepoLock(lockDir(), r.Path),
	}
}

// Repository returns the handle this facade operates on.
func (f *Facade) Repository() Repository {
	return f.repo
}

// Executor returns the git executor shared by every operation.
func (f *Facade) Executor() git.Executor {
	return f.exec
}

// State exposes the repository state owned by this facade.
func (f *Facade) State() *repo.State {
	return f.state
}

// Snapshot returns the latest published snapshot.
func (f *Facade) Snapshot() *models.Snapshot {
	return f.state.Snapshot()
}

// Refresh rebuilds the snapshot. It only reads, so it does not wait for mutating
// operations.
func (f *Facade) Refresh(ctx context.Context) (*models.Snapshot, error) {
	return f.state.Refresh(ctx)
}

type stepFunc func(args ...string) git.Result

// mutate serialises a mutating operation, records each git step and refreshes the
// snapshot afterwards whenever at least one step ran, whether or not it succeeded.
func (f *Facade) mutate(ctx context.Context, op string, body func(step stepFunc, res *OperationResult)) (*OperationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	release, err := f.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res := &OperationResult{Op: op}
	step := func(args ...string) git.Result {
		r := f.exec.Execute(ctx, args, f.repo.Path)
		res.Steps = append(res.Steps, r)
		return r
	}
	body(step, res)

	if failed := res.Failed(); failed != nil {
		log.Printf("%s: step %q failed: %v", op, failed.Command(), failed.Err)
	}
	if len(res.Steps) > 0 {
		res.Snapshot, res.RefreshErr = f.state.Refresh(ctx)
	}
	return res, nil
}

func cleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Stage adds each path to the index.
func (f *Facade) Stage(ctx context.Context, paths []string) (*OperationResult, error) {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return nil, invalid("stage", "no files selected")
	}
	return f.mutate(ctx, "stage", func(step stepFunc, _ *OperationResult) {
		for _, p := range paths {
			step("add", "--", p)
		}
	})
}

// Unstage removes each path from the index, keeping worktree changes.
func (f *Facade) Unstage(ctx context.Context, paths []string) (*OperationResult, error) {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return nil, invalid("unstage", "no files selected")
	}
	return f.mutate(ctx, "unstage", func(step stepFunc, _ *OperationResult) {
		for _, p := range paths {
			step("reset", "HEAD", "--", p)
		}
	})
}

// StageAll stages every change, including untracked files and deletions.
func (f *Facade) StageAll(ctx context.Context) (*OperationResult, error) {
	return f.mutate(ctx, "stage-all", func(step stepFunc, _ *OperationResult) {
		step("add", "-A")
	})
}

func (f *Facade) validateCommit(op, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", invalid(op, "commit message is empty")
	}
	if !f.state.Snapshot().HasStaged() {
		return "", invalid(op, "no files staged for commit")
	}
	return message, nil
}

// Commit records the staged changes. It requires a message and a non-empty
// staged set in the current snapshot.
func (f *Facade) Commit(ctx context.Context, message string) (*OperationResult, error) {
	message, err := f.validateCommit("commit", message)
	if err != nil {
		return nil, err
	}
	return f.mutate(ctx, "commit", func(step stepFunc, _ *OperationResult) {
		step("commit", "-m", message)
	})
}

// CommitAndPush commits then pushes as two sequential steps. The push is skipped
// when the commit fails unless push_on_commit_failure is set.
func (f *Facade) CommitAndPush(ctx context.Context, message string) (*OperationResult, error) {
	message, err := f.validateCommit("commit-and-push", message)
	if err != nil {
		return nil, err
	}
	return f.mutate(ctx, "commit-and-push", func(step stepFunc, res *OperationResult) {
		commit := step("commit", "-m", message)
		if !commit.Success() && !f.cfg.PushOnCommitFailure {
			res.Skipped = append(res.Skipped, "push")
			return
		}
		step("push")
	})
}

// Pull fetches and integrates the upstream branch.
func (f *Facade) Pull(ctx context.Context) (*OperationResult, error) {
	return f.mutate(ctx, "pull", func(step stepFunc, _ *OperationResult) {
		step("pull")
	})
}

// Push sends local commits to the upstream branch.
func (f *Facade) Push(ctx context.Context) (*OperationResult, error) {
	return f.mutate(ctx, "push", func(step stepFunc, _ *OperationResult) {
		step("push")
	})
}

// CreateBranch creates name from HEAD and switches to it.
func (f *Facade) CreateBranch(ctx context.Context, name string) (*OperationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("create-branch", "branch name is empty")
	}
	return f.mutate(ctx, "create-branch", func(step stepFunc, _ *OperationResult) {
		step("checkout", "-b", name)
	})
}

// SwitchBranch checks out name. Remote-tracking names such as
// "remotes/origin/feature" are reduced to "feature" first.
func (f *Facade) SwitchBranch(ctx context.Context, name string) (*OperationResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("switch-branch", "no branch selected")
	}
	target := git.NormalizeBranchName(name, f.cfg.RemotePrefixes)
	return f.mutate(ctx, "switch-branch", func(step stepFunc, _ *OperationResult) {
		step("checkout", target)
	})
}

// MergeBranch merges name into the current branch.
func (f *Facade) MergeBranch(ctx context.Context, name string) (*OperationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("merge-branch", "no branch selected")
	}
	return f.mutate(ctx, "merge-branch", func(step stepFunc, _ *OperationResult) {
		step("merge", name)
	})
}

// ViewHistory returns the last count commits. A zero count uses history_count.
// It only reads, so it neither waits for mutating operations nor refreshes.
func (f *Facade) ViewHistory(ctx context.Context, count int) (*OperationResult, error) {
	if count < 0 {
		return nil, invalid("history", fmt.Sprintf("invalid commit count %d", count))
	}
	if count == 0 {
		count = f.cfg.HistoryCount
	}
	r := f.exec.Execute(ctx, []string{"log", "--oneline", "-" + strconv.Itoa(count)}, f.repo.Path)
	res := &OperationResult{Op: "history", Steps: []git.Result{r}}
	if r.Success() {
		res.History = git.ParseLog(r.Stdout)
	}
	return res, nil
}

// Clone clones url into dest, running git from dest's parent directory.
func Clone(ctx context.Context, exec git.Executor, url, dest string) (*OperationResult, error) {
	url = strings.TrimSpace(url)
	dest = strings.TrimSpace(dest)
	if url == "" || dest == "" {
		return nil, invalid("clone", "repository URL and destination are required")
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, invalid("clone", err.Error())
	}

	r := exec.Execute(ctx, []string{"clone", url, abs}, filepath.Dir(abs))
	res := &OperationResult{Op: "clone", Steps: []git.Result{r}}
	if r.Success() {
		res.Repository = &Repository{Path: abs}
	}
	return res, nil
}

// Init creates a repository in dest, creating the directory when needed.
func Init(ctx context.Context, exec git.Executor, dest string) (*OperationResult, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return nil, invalid("init", "destination is empty")
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, invalid("init", err.Error())
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("init: create %s: %w", abs, err)
	}

	r := exec.Execute(ctx, []string{"init"}, abs)
	res := &OperationResult{Op: "init", Steps: []git.Result{r}}
	if r.Success() {
		res.Repository = &Repository{Path: abs}
	}
	return res, nil
}
