package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) renderHeader(layout layoutDims) string {
	headerStyle := lipgloss.NewStyle().
		Background(m.theme.AccentDim).
		Foreground(m.theme.TextFg).
		Bold(true).
		Width(layout.width).
		Padding(0, 2)

	content := "SimpleGit"
	if m.facade != nil {
		content = fmt.Sprintf("%s  •  %s", content, m.facade.Repository().Name())
	}
	if branch := m.snapshot.Branches.Current; branch != "" {
		content = fmt.Sprintf("%s  •  %s%s", content, iconPrefix(iconBranch, m.config.ShowIcons), branch)
	}
	return headerStyle.Render(content)
}

// renderFooter draws the status bar above the key hints.
func (m *Model) renderFooter(layout layoutDims) string {
	statusStyle := lipgloss.NewStyle().Foreground(m.theme.TextFg).Padding(0, 1)
	if strings.Contains(m.statusLine, "failed") {
		statusStyle = statusStyle.Foreground(m.theme.ErrorFg)
	}
	status := m.statusLine
	if m.tasks.Busy() {
		status = fmt.Sprintf("%s %s", m.spinner.View(), status)
	}

	var hints []string
	if m.focused == paneCommit {
		hints = []string{
			m.renderKeyHint("Enter", "Commit"),
			m.renderKeyHint("ctrl+p", "Commit & Push"),
			m.renderKeyHint("Tab", "Leave"),
		}
	} else {
		hints = []string{
			m.renderKeyHint("Space", "Stage/Unstage"),
			m.renderKeyHint("a", "Stage All"),
			m.renderKeyHint("c", "Commit"),
			m.renderKeyHint("C", "Commit & Push"),
			m.renderKeyHint("p/P", "Pull/Push"),
			m.renderKeyHint("b", "Branch"),
			m.renderKeyHint("s", "Switch"),
			m.renderKeyHint("m", "Merge"),
			m.renderKeyHint("l", "Log"),
			m.renderKeyHint("r", "Refresh"),
			m.renderKeyHint("q", "Quit"),
		}
	}
	hintStyle := lipgloss.NewStyle().Background(m.theme.Border).Width(layout.width).MaxWidth(layout.width).Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Width(layout.width).MaxWidth(layout.width).Render(status),
		hintStyle.Render(strings.Join(hints, " ")),
	)
}

func (m *Model) renderKeyHint(key, label string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(m.theme.TextFg).Background(m.theme.Border)
	return fmt.Sprintf("%s %s", keyStyle.Render(key), labelStyle.Render(label))
}

// renderPaneTitle renders a pane title; count < 0 hides the counter.
func (m *Model) renderPaneTitle(title string, count int, focused bool, width int) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	if focused {
		titleStyle = titleStyle.Foreground(m.theme.Accent).Bold(true)
	}
	if count >= 0 {
		title = fmt.Sprintf("%s (%d)", title, count)
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(titleStyle.Render(title))
}

func (m *Model) paneStyle(focused bool) lipgloss.Style {
	borderColor := m.theme.Border
	borderStyle := lipgloss.NormalBorder()
	if focused {
		borderColor = m.theme.Accent
		borderStyle = lipgloss.RoundedBorder()
	}
	return lipgloss.NewStyle().
		Border(borderStyle).
		BorderForeground(borderColor).
		Padding(0, 1)
}

func (m *Model) popupStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Accent).
		Padding(1, 2)
}
