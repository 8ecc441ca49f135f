package app

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wrap"
)

// logf appends a timestamped line to the console pane.
func (m *Model) logf(format string, args ...any) {
	text := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	stamp := m.now().Format("15:04:05")
	for _, line := range strings.Split(text, "\n") {
		m.consoleLines = append(m.consoleLines, fmt.Sprintf("[%s] %s", stamp, line))
	}
	if extra := len(m.consoleLines) - maxConsoleLines; extra > 0 {
		m.consoleLines = m.consoleLines[extra:]
	}
	m.syncConsole()
}

func (m *Model) syncConsole() {
	width := maxInt(m.console.Width, 1)
	m.console.SetContent(wrap.String(strings.Join(m.consoleLines, "\n"), width))
	m.console.GotoBottom()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
