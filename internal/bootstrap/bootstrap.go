package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chmouel/simplegit/internal/config"
	"github.com/chmouel/simplegit/internal/git"
	"github.com/chmouel/simplegit/internal/log"
	"github.com/chmouel/simplegit/internal/ops"
	"github.com/chmouel/simplegit/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

// NewExecutorFunc builds the git executor. Tests replace it with a fake.
var NewExecutorFunc = func(binary string) (git.Executor, error) {
	runner := git.NewRunner(binary)
	if !runner.Available() {
		return nil, fmt.Errorf("%w: %q", git.ErrBinaryNotFound, runner.Binary())
	}
	return runner, nil
}

// Environment is everything a command needs once flags have been applied.
type Environment struct {
	Config   *config.AppConfig
	Executor git.Executor
	RepoPath string
}

// LoadConfig loads configuration for repoPath and applies theme and --config overrides.
func LoadConfig(configFile, repoPath, themeFlag string, overrides []string, stderr io.Writer) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configFile, repoPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	if err := applyThemeConfig(cfg, themeFlag); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	normalized := config.NormalizeThemeName(themeName)
	if normalized == "" {
		return fmt.Errorf("unknown theme %q (available: %v)", themeName, theme.AvailableThemes())
	}
	cfg.Theme = normalized
	return nil
}

// SetupDebugLog points the debug logger at the flag value, falling back to the
// config value. With neither, buffered messages are discarded.
func SetupDebugLog(flagPath string, cfg *config.AppConfig, stderr io.Writer) {
	log.SetMaxSize(cfg.LogMaxSizeMB)

	path := flagPath
	if path == "" {
		path = cfg.DebugLog
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := config.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}

// Setup reads the global flags of cmd and prepares the shared environment.
func Setup(_ context.Context, cmd *urfavecli.Command) (*Environment, error) {
	stderr := cmd.Root().ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	repoPath := cmd.String("repo")

	cfg, err := LoadConfig(cmd.String("config-file"), repoPath, cmd.String("theme"), cmd.StringSlice("config"), stderr)
	if err != nil {
		return nil, err
	}
	SetupDebugLog(cmd.String("debug-log"), cfg, stderr)

	exec, err := NewExecutorFunc(cfg.GitBinary)
	if err != nil {
		return nil, err
	}
	log.Printf("startup: repo=%s git=%s theme=%s", repoPath, cfg.GitBinary, cfg.Theme)
	return &Environment{Config: cfg, Executor: exec, RepoPath: repoPath}, nil
}

// OpenFacade opens the repository and takes a first snapshot so validations
// that depend on it, such as "nothing staged", see the real state.
func (e *Environment) OpenFacade(ctx context.Context) (*ops.Facade, error) {
	r, err := ops.OpenRepository(ctx, e.Executor, e.RepoPath)
	if err != nil {
		return nil, err
	}
	facade := ops.New(e.Executor, r, e.Config)
	if _, err := facade.Refresh(ctx); err != nil {
		log.Printf("initial refresh of %s: %v", r.Path, err)
	}
	return facade, nil
}
