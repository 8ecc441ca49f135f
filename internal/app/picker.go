package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/ops"
)

type pickAction int

const (
	pickSwitch pickAction = iota
	pickMerge
)

func (a pickAction) title() string {
	if a == pickMerge {
		return "Merge branch into current"
	}
	return "Switch to branch"
}

// branchPicker lists the snapshot's branches for switch and merge.
type branchPicker struct {
	action   pickAction
	branches []string
	cursor   int
}

func (m *Model) openPicker(action pickAction) {
	branches := m.snapshot.Branches.All
	if len(branches) == 0 {
		m.modal = "No branches available"
		return
	}
	p := &branchPicker{action: action, branches: append([]string(nil), branches...)}
	for i, b := range p.branches {
		if b == m.snapshot.Branches.Current {
			p.cursor = i
			break
		}
	}
	m.picker = p
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.picker
	switch msg.String() {
	case "esc", "q":
		m.picker = nil
	case "j", "down":
		p.cursor = clampCursor(p.cursor+1, len(p.branches))
	case "k", "up":
		p.cursor = clampCursor(p.cursor-1, len(p.branches))
	case "enter":
		name := p.branches[p.cursor]
		m.picker = nil
		if p.action == pickMerge {
			return m, m.submit("merge-branch", func(ctx context.Context) (*ops.OperationResult, error) {
				return m.facade.MergeBranch(ctx, name)
			})
		}
		return m, m.submit("switch-branch", func(ctx context.Context) (*ops.OperationResult, error) {
			return m.facade.SwitchBranch(ctx, name)
		})
	}
	return m, nil
}
