package models

import "strings"

// FileChangeEntry represents one path reported by `git status --porcelain`.
type FileChangeEntry struct {
	Path           string
	IndexStatus    byte // X column
	WorktreeStatus byte // Y column
}

// IsUntracked reports whether git does not know the path yet.
func (e FileChangeEntry) IsUntracked() bool {
	return e.IndexStatus == StatusUntracked
}

// IsStaged reports whether the entry carries an index change.
func (e FileChangeEntry) IsStaged() bool {
	return e.IndexStatus != StatusUnmodified && e.IndexStatus != StatusUntracked
}

// IsUnstaged reports whether the entry carries a worktree change or is untracked.
func (e FileChangeEntry) IsUnstaged() bool {
	return e.WorktreeStatus != StatusUnmodified || e.IndexStatus == StatusUntracked
}

// TargetPath returns the path to hand back to git. Renames and copies are
// reported as "old -> new"; the new path is the one git knows in the index.
func (e FileChangeEntry) TargetPath() string {
	if e.IndexStatus == StatusRenamed || e.IndexStatus == StatusCopied {
		if _, target, ok := strings.Cut(e.Path, " -> "); ok {
			return target
		}
	}
	return e.Path
}

// DisplayCode returns the single status character shown next to an unstaged path.
func (e FileChangeEntry) DisplayCode() byte {
	if e.IsUntracked() {
		return StatusUntracked
	}
	return e.WorktreeStatus
}

// StatusDescription returns a human readable label for a status code.
func StatusDescription(code byte) string {
	switch code {
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	case StatusUntracked:
		return "untracked"
	case StatusIgnored:
		return "ignored"
	case 'U':
		return "unmerged"
	default:
		return "unchanged"
	}
}
