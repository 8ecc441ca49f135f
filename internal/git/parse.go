package git

import (
	"strings"

	"github.com/chmouel/simplegit/internal/models"
)

// DefaultRemotePrefixes lists the remote-tracking namespaces stripped before a checkout.
var DefaultRemotePrefixes = []string{"remotes/origin/"}

const branchAliasMarker = "->"

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ParseStatus converts `git status --porcelain` output into entries, preserving input
// order. Byte 0 is the index status, byte 1 the worktree status, byte 2 a separator
// and the rest the path. Lines shorter than three bytes are dropped.
func ParseStatus(raw string) []models.FileChangeEntry {
	var entries []models.FileChangeEntry
	for _, line := range splitLines(raw) {
		if len(line) < 3 {
			continue
		}
		entries = append(entries, models.FileChangeEntry{
			Path:           line[3:],
			IndexStatus:    line[0],
			WorktreeStatus: line[1],
		})
	}
	return entries
}

// SplitStatus classifies entries into the staged and unstaged lists. A path with an
// index change and a further worktree edit appears in both.
func SplitStatus(entries []models.FileChangeEntry) (staged, unstaged []models.FileChangeEntry) {
	for _, e := range entries {
		if e.IsStaged() {
			staged = append(staged, e)
		}
		if e.IsUnstaged() {
			unstaged = append(unstaged, e)
		}
	}
	return staged, unstaged
}

// ParseBranches converts `git branch -a` output into branch names. The current
// branch marker is stripped and symbolic-ref lines such as
// "remotes/origin/HEAD -> origin/main" are skipped.
func ParseBranches(raw string) []string {
	var branches []string
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "* ")
		// Branches checked out in another worktree are marked with "+ ".
		line = strings.TrimPrefix(line, "+ ")
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, branchAliasMarker) {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}

// NormalizeBranchName strips the first matching remote-tracking prefix so the name
// can be handed to `git checkout`, which then creates the local tracking branch.
func NormalizeBranchName(name string, prefixes []string) string {
	name = strings.TrimSpace(name)
	if len(prefixes) == 0 {
		prefixes = DefaultRemotePrefixes
	}
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// ParseLog converts `git log --oneline` output into entries.
func ParseLog(raw string) []models.CommitLogEntry {
	var entries []models.CommitLogEntry
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sha, message, _ := strings.Cut(line, " ")
		entries = append(entries, models.CommitLogEntry{SHA: sha, Message: message})
	}
	return entries
}
