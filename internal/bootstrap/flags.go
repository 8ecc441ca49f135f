// Package bootstrap turns command-line flags into the configuration, debug log
// and git executor shared by the TUI and the subcommands.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// GlobalFlags returns the flags accepted before any subcommand.
// --version is provided automatically by urfave/cli via Command.Version.
func GlobalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Value:   ".",
			Usage:   "Path inside the repository to operate on",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=sg.key=value",
		},
	}
}
