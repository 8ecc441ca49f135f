package ops

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/chmouel/simplegit/internal/git"
)

// Repository is the handle of an open repository. Every operation is scoped to it.
type Repository struct {
	Path string
}

// Name returns the last element of the repository path.
func (r Repository) Name() string {
	return filepath.Base(r.Path)
}

// OpenRepository validates that path is inside a git work tree and returns a handle
// rooted at its top level.
func OpenRepository(ctx context.Context, exec git.Executor, path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Repository{}, invalid("open", "repository path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Repository{}, invalid("open", err.Error())
	}

	res := exec.Execute(ctx, []string{"rev-parse", "--show-toplevel"}, abs)
	if !res.Success() {
		return Repository{}, invalid("open", "not a git repository: "+abs)
	}
	top := strings.TrimSpace(res.Stdout)
	if top == "" {
		top = abs
	}
	return Repository{Path: filepath.Clean(top)}, nil
}
