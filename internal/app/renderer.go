package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/simplegit/internal/models"
)

// View renders the whole screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	layout := m.computeLayout()
	m.applyLayout(layout)

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderFileList(paneUnstaged, "Changes", m.snapshot.Unstaged, layout.leftWidth, layout.unstagedH, layout.leftInnerW),
		m.renderFileList(paneStaged, "Staged", m.snapshot.Staged, layout.leftWidth, layout.stagedH, layout.leftInnerW),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderCommitPane(layout),
		m.renderConsolePane(layout),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	body = truncateToHeight(body, layout.bodyHeight)

	base := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(layout), body, m.renderFooter(layout))

	switch {
	case m.modal != "":
		return m.overlay(m.renderModal())
	case m.picker != nil:
		return m.overlay(m.renderPicker())
	case m.promptingBranch:
		return m.overlay(m.renderBranchPrompt())
	}
	return base
}

func (m *Model) overlay(popup string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popup)
}

func (m *Model) renderFileList(p pane, title string, entries []models.FileChangeEntry, width, height, innerW int) string {
	focused := m.focused == p
	innerH := maxInt(height-paneFrameH-1, 1)
	header := m.renderPaneTitle(title, len(entries), focused, innerW)

	if len(entries) == 0 {
		empty := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("Nothing here.")
		return m.paneStyle(focused).Width(width - 2).Height(height - paneFrameH).
			Render(lipgloss.JoinVertical(lipgloss.Left, header, empty))
	}

	cursor := m.cursors[p]
	start := 0
	if cursor >= innerH {
		start = cursor - innerH + 1
	}
	end := minInt(len(entries), start+innerH)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderFileRow(p, entries[i], focused && i == cursor, innerW))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, rows...)...)
	return m.paneStyle(focused).Width(width - 2).Height(height - paneFrameH).Render(content)
}

func (m *Model) renderFileRow(p pane, e models.FileChangeEntry, selected bool, width int) string {
	code := e.DisplayCode()
	if p == paneStaged {
		code = e.IndexStatus
	}
	codeStyle := lipgloss.NewStyle().Foreground(m.theme.StatusColor(code)).Bold(true)
	line := fmt.Sprintf("%s %s%s", codeStyle.Render(string(code)), iconPrefix(deviconForPath(e.Path), m.config.ShowIcons), e.Path)

	style := lipgloss.NewStyle().Foreground(m.theme.TextFg).Width(width).MaxWidth(width)
	if selected {
		style = style.Foreground(m.theme.AccentFg).Background(m.theme.Accent).Bold(true)
	}
	return style.Render(line)
}

func (m *Model) renderCommitPane(layout layoutDims) string {
	focused := m.focused == paneCommit
	header := m.renderPaneTitle("Commit message", -1, focused, layout.rightInnerW)
	return m.paneStyle(focused).Width(layout.rightWidth - 2).Height(layout.commitH - paneFrameH).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, m.commitInput.View()))
}

func (m *Model) renderConsolePane(layout layoutDims) string {
	header := m.renderPaneTitle("Console", -1, false, layout.rightInnerW)
	return m.paneStyle(false).Width(layout.rightWidth - 2).Height(layout.consoleH - paneFrameH).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, m.console.View()))
}

func (m *Model) renderModal() string {
	title := lipgloss.NewStyle().Foreground(m.theme.WarnFg).Bold(true).Render("Cannot do that")
	hint := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("Press any key to dismiss")
	return m.popupStyle().Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.modal, "", hint))
}

func (m *Model) renderPicker() string {
	p := m.picker
	title := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Render(p.action.title())
	rows := []string{title, ""}
	for i, b := range p.branches {
		label := iconPrefix(iconBranch, m.config.ShowIcons) + b
		if b == m.snapshot.Branches.Current {
			label += " (current)"
		}
		style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
		if i == p.cursor {
			style = style.Foreground(m.theme.AccentFg).Background(m.theme.Accent).Bold(true)
		}
		rows = append(rows, style.Render(label))
	}
	return m.popupStyle().Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderBranchPrompt() string {
	title := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Render("Create branch")
	return m.popupStyle().Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.branchInput.View()))
}

func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
