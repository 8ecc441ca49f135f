package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/watch"
)

func (m *Model) startAutoRefresh() tea.Cmd {
	if m.autoRefreshStarted {
		return nil
	}
	if m.autoRefreshInterval() <= 0 {
		return nil
	}
	m.autoRefreshStarted = true
	return m.autoRefreshTick()
}

func (m *Model) autoRefreshInterval() time.Duration {
	if m.config == nil || !m.config.AutoRefresh {
		return 0
	}
	if m.config.RefreshIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(m.config.RefreshIntervalSeconds) * time.Second
}

func (m *Model) autoRefreshTick() tea.Cmd {
	interval := m.autoRefreshInterval()
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return autoRefreshTickMsg{}
	})
}

// handleAutoRefreshTick refreshes on the periodic backstop unless an operation
// is in flight, then schedules the next tick.
func (m *Model) handleAutoRefreshTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.autoRefreshTick()}
	if !m.tasks.Busy() {
		m.markRefreshed()
		cmds = append(cmds, m.refresh())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) startWatcher() tea.Cmd {
	if m.watcher == nil || m.watcher.Started {
		return nil
	}
	started, err := m.watcher.Start(m.ctx, m.config.AutoRefresh)
	if err != nil {
		m.logf("Error: auto refresh disabled: %v", err)
		return nil
	}
	if !started {
		return nil
	}
	return m.waitForGitDirChange()
}

func (m *Model) waitForGitDirChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.NextEvent()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		_, ok := <-events
		if !ok {
			return nil
		}
		return gitDirChangedMsg{}
	}
}

// handleGitDirChanged refreshes after filesystem activity. Events inside the
// debounce window or during an operation are folded into one trailing refresh.
func (m *Model) handleGitDirChanged() (tea.Model, tea.Cmd) {
	m.watcher.ResetWaiting()
	cmds := []tea.Cmd{m.waitForGitDirChange()}
	if !m.tasks.Busy() && m.watcher.ShouldRefresh(m.now()) {
		cmds = append(cmds, m.refresh())
	} else {
		cmds = append(cmds, m.scheduleTrailingRefresh())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) scheduleTrailingRefresh() tea.Cmd {
	if m.trailingRefresh {
		return nil
	}
	m.trailingRefresh = true
	return tea.Tick(watch.Debounce, func(time.Time) tea.Msg {
		return trailingRefreshMsg{}
	})
}

func (m *Model) handleTrailingRefresh() (tea.Model, tea.Cmd) {
	m.trailingRefresh = false
	if m.tasks.Busy() {
		return m, m.scheduleTrailingRefresh()
	}
	m.markRefreshed()
	return m, m.refresh()
}

func (m *Model) markRefreshed() {
	if m.watcher != nil {
		m.watcher.LastRefresh = m.now()
	}
}
