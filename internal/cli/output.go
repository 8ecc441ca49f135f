// Package cli renders operation results for the non-interactive subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/chmouel/simplegit/internal/repo"
	"github.com/fatih/color"
	"github.com/rodaine/table"
)

// ErrOperationFailed is returned when a git step of an operation failed or was skipped.
var ErrOperationFailed = errors.New("operation failed")

var (
	boldText    = color.New(color.Bold).SprintFunc()
	greenText   = color.New(color.FgGreen).SprintFunc()
	redText     = color.New(color.FgRed).SprintFunc()
	yellowText  = color.New(color.FgYellow).SprintFunc()
	cyanText    = color.New(color.FgCyan).SprintFunc()
	faintText   = color.New(color.Faint).SprintFunc()
	statusColor = map[byte]func(a ...any) string{
		models.StatusAdded:     greenText,
		models.StatusDeleted:   redText,
		models.StatusRenamed:   cyanText,
		models.StatusCopied:    cyanText,
		models.StatusUntracked: faintText,
	}
)

func colorCode(code byte) string {
	paint, ok := statusColor[code]
	if !ok {
		paint = yellowText
	}
	return paint(string(code))
}

func newTable(w io.Writer, headers ...any) table.Table {
	tbl := table.New(headers...)
	tbl.WithWriter(w)
	tbl.WithHeaderFormatter(func(format string, vals ...any) string {
		return boldText(fmt.Sprintf(format, vals...))
	})
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	return tbl
}

// PrintStatus writes the branch, the staged and unstaged lists and the summary line.
func PrintStatus(w io.Writer, snap *models.Snapshot) {
	branch := snap.Branches.Current
	if branch == "" {
		branch = "(unknown)"
	}
	fmt.Fprintf(w, "On branch %s\n", boldText(branch))

	if len(snap.Staged) == 0 && len(snap.Unstaged) == 0 {
		fmt.Fprintln(w, "nothing to commit, working tree clean")
		return
	}

	fmt.Fprintln(w)
	tbl := newTable(w, "AREA", "CODE", "STATE", "PATH")
	for _, e := range snap.Staged {
		tbl.AddRow(greenText("staged"), colorCode(e.IndexStatus), models.StatusDescription(e.IndexStatus), e.Path)
	}
	for _, e := range snap.Unstaged {
		code := e.DisplayCode()
		tbl.AddRow(redText("unstaged"), colorCode(code), models.StatusDescription(code), e.Path)
	}
	tbl.Print()
	fmt.Fprintf(w, "\n%s\n", repo.Summary(snap))
}

// PrintBranches lists branches with the current one marked.
func PrintBranches(w io.Writer, branches models.BranchSet) {
	for _, b := range branches.All {
		if b == branches.Current {
			fmt.Fprintf(w, "* %s\n", greenText(b))
			continue
		}
		fmt.Fprintf(w, "  %s\n", b)
	}
}

// PrintHistory writes one line per commit.
func PrintHistory(w io.Writer, entries []models.CommitLogEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n", yellowText(e.SHA), e.Message)
	}
}

// PrintResult echoes each step and its output, then reports the refreshed
// summary. It returns ErrOperationFailed when a step failed or was skipped.
func PrintResult(w io.Writer, res *ops.OperationResult) error {
	for _, step := range res.Steps {
		fmt.Fprintf(w, "%s %s\n", faintText("$"), step.Command())
		if res.History != nil && step.Success() {
			continue
		}
		if text := step.Text(); text != "" {
			if step.Success() {
				fmt.Fprintln(w, text)
			} else {
				fmt.Fprintln(w, redText(text))
			}
		}
	}
	PrintHistory(w, res.History)
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "%s %s (earlier step failed)\n", yellowText("skipped"), s)
	}
	if res.RefreshErr != nil {
		fmt.Fprintf(w, "%s %v\n", redText("refresh:"), res.RefreshErr)
	}
	if res.Snapshot != nil {
		fmt.Fprintln(w, repo.Summary(res.Snapshot))
	}

	if failed := res.Failed(); failed != nil {
		return fmt.Errorf("%w: %s exited with %d", ErrOperationFailed, failed.Command(), failed.ExitCode)
	}
	if len(res.Skipped) > 0 {
		return fmt.Errorf("%w: skipped %v", ErrOperationFailed, res.Skipped)
	}
	return nil
}
