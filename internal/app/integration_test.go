package app

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/chmouel/simplegit/internal/config"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramRefreshesAndQuits(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	exec := newFakeGit(" M edited.go\n")
	cfg := config.DefaultConfig()
	cfg.AutoRefresh = false
	facade := ops.New(exec, ops.Repository{Path: t.TempDir()}, cfg)

	tm := teatest.NewTestModel(t, NewModel(cfg, facade), teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("edited.go"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
	m, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	assert.True(t, m.quitting)
	assert.Equal(t, paneStaged, m.focused)
	assert.True(t, exec.called("status --porcelain"))
}
