// Package models defines the data objects shared across simplegit packages.
package models

import "time"

// Status codes reported by git in porcelain output.
const (
	StatusUnmodified = ' '
	StatusModified   = 'M'
	StatusAdded      = 'A'
	StatusDeleted    = 'D'
	StatusRenamed    = 'R'
	StatusCopied     = 'C'
	StatusUntracked  = '?'
	StatusIgnored    = '!'
)

// BranchSet holds the current branch and every branch known to the repository.
type BranchSet struct {
	Current string
	All     []string
}

// CommitLogEntry is a single line of `git log --oneline`.
type CommitLogEntry struct {
	SHA     string
	Message string
}

// Snapshot is an immutable view of a repository at a point in time.
// It is replaced wholesale on every refresh and never mutated afterwards.
type Snapshot struct {
	Branches    BranchSet
	Staged      []FileChangeEntry
	Unstaged    []FileChangeEntry
	Generation  uint64
	RefreshedAt time.Time
	Errors      []string // queries that failed during the refresh that built this snapshot
}

// EmptySnapshot returns the snapshot visible before the first refresh completes.
func EmptySnapshot() *Snapshot {
	return &Snapshot{}
}

// HasStaged reports whether anything is recorded for the next commit.
func (s *Snapshot) HasStaged() bool {
	return s != nil && len(s.Staged) > 0
}

// IsStaged reports whether path appears in the staged list.
func (s *Snapshot) IsStaged(path string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.Staged {
		if e.Path == path {
			return true
		}
	}
	return false
}
