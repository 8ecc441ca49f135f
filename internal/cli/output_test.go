package cli

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/chmouel/simplegit/internal/git"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrintStatusClean(t *testing.T) {
	var buf bytes.Buffer
	PrintStatus(&buf, &models.Snapshot{Branches: models.BranchSet{Current: "main"}})
	assert.Equal(t, "On branch main\nnothing to commit, working tree clean\n", buf.String())
}

func TestPrintStatusLists(t *testing.T) {
	snap := &models.Snapshot{
		Branches: models.BranchSet{Current: "dev"},
		Staged:   []models.FileChangeEntry{{Path: "a.go", IndexStatus: 'A', WorktreeStatus: ' '}},
		Unstaged: []models.FileChangeEntry{
			{Path: "b.go", IndexStatus: ' ', WorktreeStatus: 'M'},
			{Path: "new.txt", IndexStatus: '?', WorktreeStatus: '?'},
		},
	}
	var buf bytes.Buffer
	PrintStatus(&buf, snap)

	out := buf.String()
	assert.Contains(t, out, "On branch dev")
	assert.Contains(t, out, "AREA")
	assert.Regexp(t, `staged\s+A\s+added\s+a.go`, out)
	assert.Regexp(t, `unstaged\s+M\s+modified\s+b.go`, out)
	assert.Regexp(t, `unstaged\s+\?\s+untracked\s+new.txt`, out)
	assert.Contains(t, out, "Repository refreshed - 1 staged, 2 changed")
}

func TestPrintBranches(t *testing.T) {
	var buf bytes.Buffer
	PrintBranches(&buf, models.BranchSet{Current: "main", All: []string{"dev", "main"}})
	assert.Equal(t, "  dev\n* main\n", buf.String())
}

func TestPrintResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		res := &ops.OperationResult{
			Op:       "pull",
			Steps:    []git.Result{{Args: []string{"pull"}, Output: "Already up to date."}},
			Snapshot: &models.Snapshot{},
		}
		require.NoError(t, PrintResult(&buf, res))
		assert.Equal(t, "$ git pull\nAlready up to date.\nRepository refreshed - 0 staged, 0 changed\n", buf.String())
	})

	t.Run("failed step", func(t *testing.T) {
		var buf bytes.Buffer
		res := &ops.OperationResult{
			Op:      "commit-and-push",
			Steps:   []git.Result{{Args: []string{"commit", "-m", "x"}, ExitCode: 1, Output: "nothing added", Err: git.ErrCommandFailed}},
			Skipped: []string{"push"},
		}
		err := PrintResult(&buf, res)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOperationFailed))
		assert.Contains(t, buf.String(), "Error: nothing added")
		assert.Contains(t, buf.String(), "skipped push")
	})

	t.Run("history", func(t *testing.T) {
		var buf bytes.Buffer
		res := &ops.OperationResult{
			Op:      "history",
			Steps:   []git.Result{{Args: []string{"log", "--oneline", "-2"}, Output: "abc one\ndef two"}},
			History: []models.CommitLogEntry{{SHA: "abc", Message: "one"}, {SHA: "def", Message: "two"}},
		}
		require.NoError(t, PrintResult(&buf, res))
		assert.Equal(t, "$ git log --oneline -2\nabc one\ndef two\n", buf.String())
	})
}
