package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/config"
	"github.com/chmouel/simplegit/internal/git"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]git.Result
}

func (f *fakeGit) Execute(_ context.Context, args []string, dir string) git.Result {
	key := strings.Join(args, " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	res := f.responses[key]
	res.Args = args
	res.Dir = dir
	return res
}

func (f *fakeGit) count(args string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == args {
			n++
		}
	}
	return n
}

func (f *fakeGit) set(args string, res git.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[args] = res
}

func (f *fakeGit) called(args string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == args {
			return true
		}
	}
	return false
}

func newFakeGit(status string) *fakeGit {
	return &fakeGit{responses: map[string]git.Result{
		"rev-parse --abbrev-ref HEAD": {Stdout: "main\n"},
		"branch -a":                   {Stdout: "* main\n  remotes/origin/feature\n"},
		"status --porcelain":          {Stdout: status},
	}}
}

// newTestModel returns a model whose snapshot already reflects status.
func newTestModel(t *testing.T, status string) (*Model, *fakeGit) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	exec := newFakeGit(status)
	cfg := config.DefaultConfig()
	cfg.AutoRefresh = false
	facade := ops.New(exec, ops.Repository{Path: t.TempDir()}, cfg)
	m := NewModel(cfg, facade)
	m.commitInput.Cursor.SetMode(cursor.CursorStatic)
	m.branchInput.Cursor.SetMode(cursor.CursorStatic)
	t.Cleanup(m.shutdown)
	drain(t, m, m.refresh())
	m.setWindowSize(120, 40)
	return m, exec
}

// drain runs cmd and feeds every resulting message back through Update until
// nothing is left. Spinner ticks and quit messages are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
		return
	default:
		model, next := m.Update(msg)
		require.Same(t, m, model)
		drain(t, m, next)
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}
