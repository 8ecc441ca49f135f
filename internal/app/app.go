// Package app implements the interactive terminal front end. It only renders
// snapshots and hands user actions to the operations facade.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/simplegit/internal/config"
	"github.com/chmouel/simplegit/internal/models"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/chmouel/simplegit/internal/tasks"
	"github.com/chmouel/simplegit/internal/theme"
	"github.com/chmouel/simplegit/internal/watch"
)

type pane int

const (
	paneUnstaged pane = iota
	paneStaged
	paneCommit
	paneCount
)

func (p pane) next() pane {
	return (p + 1) % paneCount
}

const maxConsoleLines = 500

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	config  *config.AppConfig
	theme   *theme.Theme
	facade  *ops.Facade
	tasks   *tasks.Coordinator
	watcher *watch.Watcher
	now     func() time.Time

	snapshot *models.Snapshot
	focused  pane
	cursors  [2]int // paneUnstaged, paneStaged

	commitInput textinput.Model
	branchInput textinput.Model
	console     viewport.Model
	spinner     spinner.Model

	consoleLines    []string
	statusLine      string
	modal           string
	picker          *branchPicker
	promptingBranch bool

	autoRefreshStarted bool
	trailingRefresh    bool

	width    int
	height   int
	quitting bool
}

// NewModel creates the model for the repository managed by facade.
func NewModel(cfg *config.AppConfig, facade *ops.Facade) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	th := theme.GetTheme(cfg.Theme)

	commitInput := textinput.New()
	commitInput.Placeholder = "Commit message"
	commitInput.Prompt = "> "
	commitInput.CharLimit = 500
	commitInput.PromptStyle = lipgloss.NewStyle().Foreground(th.Accent)

	branchInput := textinput.New()
	branchInput.Placeholder = "new-branch-name"
	branchInput.Prompt = "Branch: "
	branchInput.PromptStyle = lipgloss.NewStyle().Foreground(th.Accent)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Accent)

	m := &Model{
		ctx:         ctx,
		cancel:      cancel,
		config:      cfg,
		theme:       th,
		facade:      facade,
		tasks:       tasks.New(ctx),
		now:         time.Now,
		snapshot:    models.EmptySnapshot(),
		focused:     paneUnstaged,
		commitInput: commitInput,
		branchInput: branchInput,
		console:     viewport.New(40, 5),
		spinner:     sp,
		statusLine:  "Ready",
	}
	if facade != nil {
		m.snapshot = facade.Snapshot()
		m.watcher = watch.New(facade.Executor(), facade.Repository().Path)
		m.logf("Opened repository: %s", facade.Repository().Path)
	}
	return m
}

// Init starts the first refresh and the filesystem watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.startWatcher(), m.startAutoRefresh())
}

// Busy reports whether any background operation is outstanding.
func (m *Model) Busy() bool {
	return m.tasks.Busy()
}

// Snapshot returns the snapshot currently rendered.
func (m *Model) Snapshot() *models.Snapshot {
	return m.snapshot
}

func (m *Model) shutdown() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.cancel()
}

// applySnapshot swaps in snap unless a newer one is already displayed, then
// keeps cursors inside the new lists.
func (m *Model) applySnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	if m.snapshot != nil && snap.Generation < m.snapshot.Generation {
		return
	}
	m.snapshot = snap
	m.cursors[paneUnstaged] = clampCursor(m.cursors[paneUnstaged], len(snap.Unstaged))
	m.cursors[paneStaged] = clampCursor(m.cursors[paneStaged], len(snap.Staged))
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// selectedEntry returns the file under the cursor of the focused list.
func (m *Model) selectedEntry() (models.FileChangeEntry, bool) {
	var list []models.FileChangeEntry
	switch m.focused {
	case paneUnstaged:
		list = m.snapshot.Unstaged
	case paneStaged:
		list = m.snapshot.Staged
	default:
		return models.FileChangeEntry{}, false
	}
	idx := m.cursors[m.focused]
	if idx < 0 || idx >= len(list) {
		return models.FileChangeEntry{}, false
	}
	return list[idx], true
}

func (m *Model) listLen(p pane) int {
	switch p {
	case paneUnstaged:
		return len(m.snapshot.Unstaged)
	case paneStaged:
		return len(m.snapshot.Staged)
	}
	return 0
}
