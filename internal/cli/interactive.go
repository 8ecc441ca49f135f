package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// branchSelector abstracts interactive branch selection for testability.
type branchSelector func(branches []string, current string, stdin io.Reader, stderr io.Writer) (string, error)

// selectBranchFunc is the package-level function variable used by SelectBranch.
// Tests can replace this to avoid fzf/stdin dependencies.
var selectBranchFunc branchSelector = selectBranchDefault

// fzfLookPath is a package-level variable for exec.LookPath, replaceable in tests.
var fzfLookPath = exec.LookPath

// SelectBranch presents branches for interactive selection. When fzf is
// installed the list is piped through it; otherwise a numbered list is printed
// to stderr and the user types a number.
func SelectBranch(branches []string, current string, stdin io.Reader, stderr io.Writer) (string, error) {
	if len(branches) == 0 {
		return "", fmt.Errorf("no branches found")
	}
	return selectBranchFunc(branches, current, stdin, stderr)
}

// SelectBranchFromStdio is a convenience wrapper using os.Stdin/os.Stderr.
func SelectBranchFromStdio(branches []string, current string) (string, error) {
	return SelectBranch(branches, current, os.Stdin, os.Stderr)
}

func selectBranchDefault(branches []string, current string, stdin io.Reader, stderr io.Writer) (string, error) {
	if _, err := fzfLookPath("fzf"); err == nil {
		return selectBranchWithFzf(branches, stderr)
	}
	return selectBranchWithPrompt(branches, current, stdin, stderr)
}

func selectBranchWithFzf(branches []string, stderr io.Writer) (string, error) {
	cmd := exec.Command("fzf",
		"--prompt", "Select branch> ",
		"--header", "Branch selection (type to filter)",
	)
	cmd.Stdin = strings.NewReader(strings.Join(branches, "\n"))
	cmd.Stderr = stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("branch selection cancelled")
	}
	selected := strings.TrimSpace(string(out))
	if selected == "" {
		return "", fmt.Errorf("no branch selected")
	}
	return selected, nil
}

// selectBranchWithPrompt displays a numbered list and reads the user's choice.
func selectBranchWithPrompt(branches []string, current string, stdin io.Reader, stderr io.Writer) (string, error) {
	fmt.Fprintf(stderr, "\nBranches:\n\n")
	for i, b := range branches {
		marker := " "
		if b == current {
			marker = "*"
		}
		fmt.Fprintf(stderr, "  [%d] %s %s\n", i+1, marker, b)
	}
	fmt.Fprintf(stderr, "\nSelect branch [1-%d]: ", len(branches))

	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return "", fmt.Errorf("branch selection cancelled")
	}

	text := strings.TrimSpace(scanner.Text())
	if text == "" {
		return "", fmt.Errorf("no branch selected")
	}
	idx, err := strconv.Atoi(text)
	if err != nil {
		return "", fmt.Errorf("invalid selection: %q", text)
	}
	if idx < 1 || idx > len(branches) {
		return "", fmt.Errorf("selection out of range: %d (must be 1-%d)", idx, len(branches))
	}
	return branches[idx-1], nil
}
