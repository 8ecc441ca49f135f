package ops

import (
	"strings"

	"github.com/chmouel/simplegit/internal/git"
	"github.com/chmouel/simplegit/internal/models"
)

// OperationResult describes what an operation ran and the state it left behind.
type OperationResult struct {
	Op         string
	Steps      []git.Result
	Skipped    []string // steps not run because an earlier step failed
	Snapshot   *models.Snapshot
	RefreshErr error
	History    []models.CommitLogEntry
	Repository *Repository // set by Clone and Init
}

// Success reports whether every step that ran exited cleanly and none were skipped.
func (r *OperationResult) Success() bool {
	if r == nil {
		return false
	}
	return r.Failed() == nil && len(r.Skipped) == 0
}

// Failed returns the first failing step, or nil.
func (r *OperationResult) Failed() *git.Result {
	if r == nil {
		return nil
	}
	for i := range r.Steps {
		if !r.Steps[i].Success() {
			return &r.Steps[i]
		}
	}
	return nil
}

// Output joins the console text of every step.
func (r *OperationResult) Output() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Steps))
	for _, step := range r.Steps {
		if text := step.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
