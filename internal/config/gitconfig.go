package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/chmouel/simplegit/internal/git"
)

// gitConfigPrefix namespaces simplegit keys inside git config.
const gitConfigPrefix = "sg."

// newGitExecutor builds the executor used for git config lookups. Tests replace it.
var newGitExecutor = func(binary string) git.Executor {
	return git.NewRunner(binary)
}

// runGitConfig executes git config command and returns raw output.
func runGitConfig(exec git.Executor, args []string, repoPath string) (string, error) {
	res := exec.Execute(context.Background(), args, repoPath)
	switch {
	case res.Success():
		return res.Stdout, nil
	case res.ExitCode == 1:
		// git config exits 1 when no key matches
		return "", nil
	default:
		return "", res.Err
	}
}

// configKey maps a git config variable name to the YAML key. Git only allows
// alphanumerics and dashes in variable names, so "history-count" becomes "history_count".
func configKey(name string) string {
	name = strings.TrimPrefix(strings.ToLower(name), gitConfigPrefix)
	return strings.ReplaceAll(name, "-", "_")
}

// parseGitConfigOutput parses git config output into multi-value map.
// Input format: "sg.history-count 50\nsg.remote-prefixes remotes/origin/\n"
func parseGitConfigOutput(output string) map[string][]string {
	configMap := make(map[string][]string)
	if output == "" {
		return configMap
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// SplitN keeps values containing spaces intact
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		key := configKey(parts[0])
		configMap[key] = append(configMap[key], parts[1])
	}

	return configMap
}

// convertGitConfigToParseConfig converts to the shape applyData expects.
func convertGitConfigToParseConfig(gitCfg map[string][]string) map[string]any {
	result := make(map[string]any)

	for key, values := range gitCfg {
		if len(values) == 0 {
			continue
		}

		// Multi-value keys become lists (e.g. remote_prefixes)
		if len(values) > 1 {
			anySlice := make([]any, len(values))
			for i, v := range values {
				anySlice[i] = v
			}
			result[key] = anySlice
			continue
		}

		// Single value - coerceBool/coerceInt handle conversion
		result[key] = values[0]
	}

	return result
}

// loadGitConfig reads git config values and returns map for applyData.
func loadGitConfig(exec git.Executor, globalOnly bool, repoPath string) (map[string]any, error) {
	args := []string{"config", "--get-regexp", `^sg\.`}

	if globalOnly {
		args = append(args, "--global")
	} else {
		args = append(args, "--local")
	}

	output, err := runGitConfig(exec, args, repoPath)
	if err != nil {
		return nil, err
	}

	return convertGitConfigToParseConfig(parseGitConfigOutput(output)), nil
}

// isInGitRepo checks if path is in a git repository.
func isInGitRepo(exec git.Executor, path string) bool {
	if path == "" {
		return false
	}
	return exec.Execute(context.Background(), []string{"rev-parse", "--git-dir"}, path).Success()
}

// parseCLIConfigOverrides parses --config=sg.key=value format.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: sg.key=value (note: use = not space)", override)
		}

		fullKey := parts[0]
		value := parts[1]

		if !strings.HasPrefix(fullKey, gitConfigPrefix) {
			return nil, fmt.Errorf("config override key must start with %q: %q", gitConfigPrefix, fullKey)
		}

		key := configKey(fullKey)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}

		// A repeated key becomes a list
		switch existing := result[key].(type) {
		case nil:
			result[key] = value
		case string:
			result[key] = []any{existing, value}
		case []any:
			result[key] = append(existing, value)
		}
	}

	return result, nil
}
