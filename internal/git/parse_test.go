package git

import (
	"testing"

	"github.com/chmouel/simplegit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusDropsShortLines(t *testing.T) {
	for _, line := range []string{"", "M", "MM", "??"} {
		assert.Empty(t, ParseStatus(line), "line %q", line)
	}
}

func TestParseStatusClassification(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantStaged   []models.FileChangeEntry
		wantUnstaged []models.FileChangeEntry
	}{
		{
			name:       "staged modification",
			raw:        "M  file.txt",
			wantStaged: []models.FileChangeEntry{{Path: "file.txt", IndexStatus: 'M', WorktreeStatus: ' '}},
		},
		{
			name:         "worktree modification",
			raw:          " M file.txt",
			wantUnstaged: []models.FileChangeEntry{{Path: "file.txt", IndexStatus: ' ', WorktreeStatus: 'M'}},
		},
		{
			name:         "untracked",
			raw:          "?? new.txt",
			wantUnstaged: []models.FileChangeEntry{{Path: "new.txt", IndexStatus: '?', WorktreeStatus: '?'}},
		},
		{
			name:         "added then modified",
			raw:          "AM file.txt",
			wantStaged:   []models.FileChangeEntry{{Path: "file.txt", IndexStatus: 'A', WorktreeStatus: 'M'}},
			wantUnstaged: []models.FileChangeEntry{{Path: "file.txt", IndexStatus: 'A', WorktreeStatus: 'M'}},
		},
		{
			name:       "staged deletion",
			raw:        "D  gone.txt",
			wantStaged: []models.FileChangeEntry{{Path: "gone.txt", IndexStatus: 'D', WorktreeStatus: ' '}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged, unstaged := SplitStatus(ParseStatus(tt.raw))
			assert.Equal(t, tt.wantStaged, staged)
			assert.Equal(t, tt.wantUnstaged, unstaged)
		})
	}
}

func TestParseStatusKeepsInputOrder(t *testing.T) {
	raw := "?? zeta.txt\r\n M alpha.txt\nR  old.go -> new.go\n\nA  beta.txt\n"
	entries := ParseStatus(raw)
	require.Len(t, entries, 4)
	assert.Equal(t, "zeta.txt", entries[0].Path)
	assert.Equal(t, "alpha.txt", entries[1].Path)
	assert.Equal(t, "old.go -> new.go", entries[2].Path)
	assert.Equal(t, byte('R'), entries[2].IndexStatus)
	assert.Equal(t, "beta.txt", entries[3].Path)

	staged, unstaged := SplitStatus(entries)
	require.Len(t, staged, 2)
	require.Len(t, unstaged, 2)
	assert.Equal(t, "old.go -> new.go", staged[0].Path)
	assert.Equal(t, "zeta.txt", unstaged[0].Path)
}

func TestDisplayCode(t *testing.T) {
	untracked := ParseStatus("?? new.txt")[0]
	assert.Equal(t, byte('?'), untracked.DisplayCode())
	assert.True(t, untracked.IsUntracked())

	modified := ParseStatus(" D old.txt")[0]
	assert.Equal(t, byte('D'), modified.DisplayCode())
}

func TestParseBranches(t *testing.T) {
	raw := `  feature/login
* main
+ wt-branch
  remotes/origin/HEAD -> origin/main
  remotes/origin/main
  remotes/origin/feature/login

`
	assert.Equal(t, []string{
		"feature/login",
		"main",
		"wt-branch",
		"remotes/origin/main",
		"remotes/origin/feature/login",
	}, ParseBranches(raw))
	assert.Empty(t, ParseBranches(""))
}

func TestNormalizeBranchName(t *testing.T) {
	assert.Equal(t, "feature/login", NormalizeBranchName("remotes/origin/feature/login", nil))
	assert.Equal(t, "main", NormalizeBranchName("main", nil))
	assert.Equal(t, "remotes/upstream/dev", NormalizeBranchName("remotes/upstream/dev", nil))
	assert.Equal(t, "dev", NormalizeBranchName("remotes/upstream/dev", []string{"remotes/origin/", "remotes/upstream/"}))
}

func TestParseLog(t *testing.T) {
	entries := ParseLog("abc1234 Fix the thing\ndef5678 Initial commit\n")
	assert.Equal(t, []models.CommitLogEntry{
		{SHA: "abc1234", Message: "Fix the thing"},
		{SHA: "def5678", Message: "Initial commit"},
	}, entries)
	assert.Empty(t, ParseLog(""))
}
