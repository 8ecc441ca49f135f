// Package config loads simplegit configuration from YAML, git config and CLI overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chmouel/simplegit/internal/theme"
	"gopkg.in/yaml.v3"
)

// AppConfig defines the global simplegit configuration options.
type AppConfig struct {
	GitBinary              string   // Executable used for every git invocation (default: "git")
	DebugLog               string   // Path of the debug log; empty disables it
	LogMaxSizeMB           int      // Debug log rotation threshold
	Theme                  string   // Theme name: see theme.AvailableThemes
	HistoryCount           int      // Number of commits shown by the history view (default: 20)
	AutoRefresh            bool     // Refresh when the git directory changes on disk (default: true)
	RefreshIntervalSeconds int      // Periodic refresh interval while auto refresh is on; 0 disables it (default: 10)
	RemotePrefixes         []string // Remote-tracking prefixes stripped before switching branch
	PushOnCommitFailure    bool     // Run the push step of commit-and-push even when the commit failed
	ShowIcons              bool     // Render Nerd Font icons next to files (default: true)
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		GitBinary:              "git",
		LogMaxSizeMB:           10,
		Theme:                  theme.DefaultDark(),
		HistoryCount:           20,
		AutoRefresh:            true,
		RefreshIntervalSeconds: 10,
		RemotePrefixes:         []string{"remotes/origin/"},
		PushOnCommitFailure:    false,
		ShowIcons:              true,
	}
}

func normalizeList(value any) []string {
	if value == nil {
		return []string{}
	}

	switch v := value.(type) {
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return []string{}
		}
		return strings.Fields(text)
	case []any:
		items := []string{}
		for _, item := range v {
			if item == nil {
				continue
			}
			text := strings.TrimSpace(fmt.Sprintf("%v", item))
			if text != "" {
				items = append(items, text)
			}
		}
		return items
	}
	return []string{}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// applyData overlays the keys present in data onto cfg. Unknown keys are ignored.
func applyData(cfg *AppConfig, data map[string]any) {
	if gitBinary, ok := data["git_binary"].(string); ok {
		gitBinary = strings.TrimSpace(gitBinary)
		if gitBinary != "" {
			cfg.GitBinary = gitBinary
		}
	}

	if debugLog, ok := data["debug_log"].(string); ok {
		cfg.DebugLog = strings.TrimSpace(debugLog)
	}

	if themeName, ok := data["theme"].(string); ok {
		if normalized := NormalizeThemeName(themeName); normalized != "" {
			cfg.Theme = normalized
		}
	}

	if _, ok := data["remote_prefixes"]; ok {
		if prefixes := normalizeList(data["remote_prefixes"]); len(prefixes) > 0 {
			cfg.RemotePrefixes = prefixes
		}
	}

	cfg.HistoryCount = coerceInt(data["history_count"], cfg.HistoryCount)
	cfg.LogMaxSizeMB = coerceInt(data["log_max_size_mb"], cfg.LogMaxSizeMB)
	cfg.AutoRefresh = coerceBool(data["auto_refresh"], cfg.AutoRefresh)
	cfg.RefreshIntervalSeconds = coerceInt(data["refresh_interval"], cfg.RefreshIntervalSeconds)
	cfg.PushOnCommitFailure = coerceBool(data["push_on_commit_failure"], cfg.PushOnCommitFailure)
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)

	if cfg.HistoryCount <= 0 {
		cfg.HistoryCount = 20
	}
	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = 10
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	applyData(cfg, data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// ConfigDir returns the directory simplegit reads its configuration from.
func ConfigDir() string {
	return filepath.Clean(filepath.Join(getConfigDir(), "simplegit"))
}

// LoadConfig reads the YAML configuration file, then overlays `sg.*` keys from the
// global git config and from the local git config of repoPath (when non-empty).
func LoadConfig(configPath, repoPath string) (*AppConfig, error) {
	configBase := ConfigDir()

	var paths []string

	if configPath != "" {
		expanded, err := expandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	cfg := DefaultConfig()

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if configPath != "" {
				return cfg, fmt.Errorf("config file %s does not exist", path)
			}
			continue
		}

		// #nosec G304 -- path is either the user supplied flag or the XDG config directory
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		applyData(cfg, yamlData)
		break
	}

	// git config is read with the binary the YAML file selected.
	exec := newGitExecutor(cfg.GitBinary)
	if globalCfg, err := loadGitConfig(exec, true, ""); err == nil {
		applyData(cfg, globalCfg)
	}
	if repoPath != "" && isInGitRepo(exec, repoPath) {
		if localCfg, err := loadGitConfig(exec, false, repoPath); err == nil {
			applyData(cfg, localCfg)
		}
	}

	return cfg, nil
}

// ApplyCLIOverrides applies repeated `--config sg.key=value` flags on top of cfg.
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	applyData(cfg, data)
	return nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// NormalizeThemeName returns the canonical theme name if it is supported.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, available := range theme.AvailableThemes() {
		if name == available {
			return name
		}
	}
	return ""
}
