// Package main is the entry point for the simplegit application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chmouel/simplegit/internal/bootstrap"
	"github.com/chmouel/simplegit/internal/buildinfo"
	"github.com/chmouel/simplegit/internal/log"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	err := newRootCommand().Run(context.Background(), os.Args)
	_ = log.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "simplegit",
		Usage:                 "A small terminal front end for everyday git",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Flags:                 bootstrap.GlobalFlags(),
		Commands: []*urfavecli.Command{
			statusCommand(),
			stageCommand(),
			unstageCommand(),
			commitCommand(),
			pullCommand(),
			pushCommand(),
			branchCommand(),
			logCommand(),
			cloneCommand(),
			initCommand(),
		},
		Action: runTUI,
	}
}
