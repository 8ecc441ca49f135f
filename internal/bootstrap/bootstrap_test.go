package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chmouel/simplegit/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urfavecli "github.com/urfave/cli/v3"
)

// isolateEnv keeps the user's config files and git config out of the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, "gitconfig"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	return home
}

type stubExecutor struct{}

func (stubExecutor) Execute(_ context.Context, args []string, dir string) git.Result {
	return git.Result{Args: args, Dir: dir}
}

func TestLoadConfigAppliesOverridesAndTheme(t *testing.T) {
	home := isolateEnv(t)
	file := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("history_count: 7\ntheme: nord\n"), 0o600))

	var stderr bytes.Buffer
	cfg, err := LoadConfig(file, "", "gruvbox-dark", []string{"sg.history-count=42", "sg.push-on-commit-failure=true"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.HistoryCount)
	assert.True(t, cfg.PushOnCommitFailure)
	assert.Equal(t, "gruvbox-dark", cfg.Theme)
	assert.Empty(t, stderr.String())
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	home := isolateEnv(t)

	var stderr bytes.Buffer
	cfg, err := LoadConfig(filepath.Join(home, "nope.yaml"), "", "", nil, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.HistoryCount)
	assert.Contains(t, stderr.String(), "Error loading config")
}

func TestLoadConfigErrors(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig("", "", "no-such-theme", nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")

	_, err = LoadConfig("", "", "", []string{"history-count=3"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error applying config overrides")
}

func TestSetupDebugLogUsesFlagThenConfig(t *testing.T) {
	home := isolateEnv(t)
	cfg, err := LoadConfig("", "", "", nil, &bytes.Buffer{})
	require.NoError(t, err)

	cfg.DebugLog = filepath.Join(home, "from-config.log")
	flagPath := filepath.Join(home, "from-flag.log")

	SetupDebugLog(flagPath, cfg, &bytes.Buffer{})
	assert.FileExists(t, flagPath)
	assert.NoFileExists(t, cfg.DebugLog)

	SetupDebugLog("", cfg, &bytes.Buffer{})
	assert.FileExists(t, cfg.DebugLog)

	cfg.DebugLog = ""
	SetupDebugLog("", cfg, &bytes.Buffer{})
}

func TestOpenFacadeTakesFirstSnapshot(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	env := &Environment{Executor: stubExecutor{}, RepoPath: dir}
	env.Config, _ = LoadConfig("", "", "", nil, &bytes.Buffer{})

	facade, err := env.OpenFacade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dir, facade.Repository().Path)
	assert.Equal(t, uint64(1), facade.Snapshot().Generation)
}

func TestSetupReadsGlobalFlags(t *testing.T) {
	home := isolateEnv(t)

	orig := NewExecutorFunc
	t.Cleanup(func() { NewExecutorFunc = orig })
	var gotBinary string
	NewExecutorFunc = func(binary string) (git.Executor, error) {
		gotBinary = binary
		return stubExecutor{}, nil
	}

	var env *Environment
	root := &urfavecli.Command{
		Name:      "simplegit",
		Flags:     GlobalFlags(),
		ErrWriter: &bytes.Buffer{},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			var err error
			env, err = Setup(ctx, cmd)
			return err
		},
	}
	err := root.Run(context.Background(), []string{"simplegit", "-r", home, "-C", "sg.git-binary=/opt/git", "--theme", "nord"})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, home, env.RepoPath)
	assert.Equal(t, "/opt/git", gotBinary)
	assert.Equal(t, "nord", env.Config.Theme)
}

func TestSetupFailsWithoutGit(t *testing.T) {
	isolateEnv(t)

	orig := git.LookupPath
	t.Cleanup(func() { git.LookupPath = orig })
	git.LookupPath = func(string) (string, error) { return "", errors.New("missing") }

	root := &urfavecli.Command{
		Name:      "simplegit",
		Flags:     GlobalFlags(),
		ErrWriter: &bytes.Buffer{},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			_, err := Setup(ctx, cmd)
			return err
		},
	}
	err := root.Run(context.Background(), []string{"simplegit"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, git.ErrBinaryNotFound))
	assert.True(t, strings.Contains(err.Error(), `"git"`))
}
