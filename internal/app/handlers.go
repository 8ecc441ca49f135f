package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/chmouel/simplegit/internal/tasks"
)

// Update routes bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tasks.DoneMsg:
		return m.handleTaskDone(msg)
	case tasks.PanicMsg:
		return m.handlePanic(msg)
	case opResultMsg:
		return m.handleOpResult(msg)
	case refreshedMsg:
		return m.handleRefreshed(msg)
	case gitDirChangedMsg:
		return m.handleGitDirChanged()
	case trailingRefreshMsg:
		return m.handleTrailingRefresh()
	case autoRefreshTickMsg:
		return m.handleAutoRefreshTick()
	case spinner.TickMsg:
		if !m.tasks.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.updateInputs(msg)
}

// updateInputs forwards cursor blinks and other input messages to the focused field.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.promptingBranch:
		m.branchInput, cmd = m.branchInput.Update(msg)
	case m.focused == paneCommit:
		m.commitInput, cmd = m.commitInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.modal != "" {
		m.modal = ""
		return m, nil
	}
	if m.picker != nil {
		return m.handlePickerKey(msg)
	}
	if m.promptingBranch {
		return m.handleBranchPromptKey(msg)
	}
	if m.focused == paneCommit {
		return m.handleCommitInputKey(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "tab":
		m.focus(m.focused.next())
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case " ", "enter":
		return m, m.toggleSelected()
	case "a":
		return m, m.submit("stage-all", m.facade.StageAll)
	case "c":
		return m, m.commit(false)
	case "C":
		return m, m.commit(true)
	case "p":
		return m, m.submit("pull", m.facade.Pull)
	case "P":
		return m, m.submit("push", m.facade.Push)
	case "b":
		m.promptingBranch = true
		m.branchInput.Reset()
		return m, m.branchInput.Focus()
	case "s":
		m.openPicker(pickSwitch)
	case "m":
		m.openPicker(pickMerge)
	case "l":
		return m, m.submit("history", func(ctx context.Context) (*ops.OperationResult, error) {
			return m.facade.ViewHistory(ctx, 0)
		})
	case "r":
		return m, m.refresh()
	}
	return m, nil
}

func (m *Model) handleCommitInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.focus(m.focused.next())
		return m, nil
	case "enter":
		return m, m.commit(false)
	case "ctrl+p":
		return m, m.commit(true)
	}
	var cmd tea.Cmd
	m.commitInput, cmd = m.commitInput.Update(msg)
	return m, cmd
}

func (m *Model) handleBranchPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptingBranch = false
		m.branchInput.Blur()
		return m, nil
	case "enter":
		name := m.branchInput.Value()
		m.promptingBranch = false
		m.branchInput.Blur()
		return m, m.submit("create-branch", func(ctx context.Context) (*ops.OperationResult, error) {
			return m.facade.CreateBranch(ctx, name)
		})
	}
	var cmd tea.Cmd
	m.branchInput, cmd = m.branchInput.Update(msg)
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.shutdown()
	return m, tea.Quit
}

func (m *Model) focus(p pane) {
	m.focused = p
	if p == paneCommit {
		m.commitInput.Focus()
		return
	}
	m.commitInput.Blur()
}

func (m *Model) moveCursor(delta int) {
	if m.focused == paneCommit {
		return
	}
	m.cursors[m.focused] = clampCursor(m.cursors[m.focused]+delta, m.listLen(m.focused))
}

// toggleSelected stages the selected unstaged file or unstages the selected staged one.
func (m *Model) toggleSelected() tea.Cmd {
	entry, ok := m.selectedEntry()
	if !ok {
		return nil
	}
	path := entry.TargetPath()
	if m.focused == paneStaged {
		return m.submit("unstage", func(ctx context.Context) (*ops.OperationResult, error) {
			return m.facade.Unstage(ctx, []string{path})
		})
	}
	return m.submit("stage", func(ctx context.Context) (*ops.OperationResult, error) {
		return m.facade.Stage(ctx, []string{path})
	})
}

func (m *Model) commit(push bool) tea.Cmd {
	message := m.commitInput.Value()
	if push {
		return m.submit("commit-and-push", func(ctx context.Context) (*ops.OperationResult, error) {
			return m.facade.CommitAndPush(ctx, message)
		})
	}
	return m.submit("commit", func(ctx context.Context) (*ops.OperationResult, error) {
		return m.facade.Commit(ctx, message)
	})
}
