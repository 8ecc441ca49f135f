package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/chmouel/simplegit/internal/repo"
	"github.com/chmouel/simplegit/internal/tasks"
)

type (
	opResultMsg struct {
		op  string
		res *ops.OperationResult
		err error
	}
	refreshedMsg struct {
		snap *models.Snapshot
		err  error
	}
	gitDirChangedMsg   struct{}
	trailingRefreshMsg struct{}
	autoRefreshTickMsg struct{}
)

type opFunc func(ctx context.Context) (*ops.OperationResult, error)

// submit runs fn in the background and starts the spinner when it is the first
// outstanding task.
func (m *Model) submit(name string, fn opFunc) tea.Cmd {
	if m.facade == nil {
		m.statusLine = "No repository open"
		return nil
	}
	wasBusy := m.tasks.Busy()
	cmd := m.tasks.Submit(name, func(ctx context.Context) tea.Msg {
		res, err := fn(ctx)
		return opResultMsg{op: name, res: res, err: err}
	})
	m.statusLine = fmt.Sprintf("Running %s...", name)
	if wasBusy {
		return cmd
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) refresh() tea.Cmd {
	if m.facade == nil {
		return nil
	}
	wasBusy := m.tasks.Busy()
	cmd := m.tasks.Submit("refresh", func(ctx context.Context) tea.Msg {
		snap, err := m.facade.Refresh(ctx)
		return refreshedMsg{snap: snap, err: err}
	})
	if wasBusy {
		return cmd
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) handleTaskDone(msg tasks.DoneMsg) (tea.Model, tea.Cmd) {
	inner := m.tasks.Complete(msg)
	if inner == nil {
		return m, nil
	}
	return m.Update(inner)
}

func (m *Model) handleRefreshed(msg refreshedMsg) (tea.Model, tea.Cmd) {
	m.applySnapshot(msg.snap)
	if msg.err != nil {
		m.logf("Error: refresh: %v", msg.err)
		m.statusLine = "Refresh failed"
		return m, nil
	}
	if !m.tasks.Busy() {
		m.statusLine = repo.Summary(m.snapshot)
	}
	return m, nil
}

func (m *Model) handleOpResult(msg opResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if ops.IsValidation(msg.err) {
			m.modal = msg.err.Error()
			m.statusLine = "Ready"
			return m, nil
		}
		m.logf("Error: %s: %v", msg.op, msg.err)
		m.statusLine = fmt.Sprintf("%s failed", msg.op)
		return m, nil
	}

	res := msg.res
	for _, step := range res.Steps {
		m.logf("$ %s", step.Command())
		if text := step.Text(); text != "" {
			m.logf("%s", text)
		}
	}
	for _, skipped := range res.Skipped {
		m.logf("Skipped %s after earlier failure", skipped)
	}
	for _, entry := range res.History {
		m.logf("%s %s", entry.SHA, entry.Message)
	}
	if res.RefreshErr != nil {
		m.logf("Error: refresh: %v", res.RefreshErr)
	}
	m.applySnapshot(res.Snapshot)

	switch {
	case res.Failed() != nil:
		m.statusLine = fmt.Sprintf("%s failed: %s", msg.op, firstLine(res.Failed().Text()))
	case len(res.Skipped) > 0:
		m.statusLine = fmt.Sprintf("%s incomplete: skipped %s", msg.op, strings.Join(res.Skipped, ", "))
	case res.Snapshot != nil:
		m.statusLine = repo.Summary(res.Snapshot)
	default:
		m.statusLine = fmt.Sprintf("%s completed", msg.op)
	}

	if (msg.op == "commit" || msg.op == "commit-and-push") && len(res.Steps) > 0 && res.Steps[0].Success() {
		m.commitInput.Reset()
	}
	return m, nil
}

func (m *Model) handlePanic(msg tasks.PanicMsg) (tea.Model, tea.Cmd) {
	m.logf("Error: %v", msg.Err)
	m.statusLine = fmt.Sprintf("%s failed", msg.Name)
	return m, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
