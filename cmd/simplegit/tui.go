package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/simplegit/internal/app"
	"github.com/chmouel/simplegit/internal/log"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var errNoTerminal = errors.New("no terminal detected; use a subcommand such as 'simplegit status'")

// isTerminalFunc reports whether both stdin and stdout are terminals.
var isTerminalFunc = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runTUI is the default action that launches the TUI when no subcommand is given.
func runTUI(ctx context.Context, cmd *urfavecli.Command) error {
	if !isTerminalFunc() {
		return errNoTerminal
	}
	env, err := setupFunc(ctx, cmd)
	if err != nil {
		return err
	}
	facade, err := env.OpenFacade(ctx)
	if err != nil {
		return err
	}

	model := app.NewModel(env.Config, facade)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Printf("tui exited with error: %v", err)
		return err
	}
	return nil
}
