package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/chmouel/simplegit/internal/bootstrap"
	"github.com/chmouel/simplegit/internal/cli"
	"github.com/chmouel/simplegit/internal/ops"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	setupFunc        = bootstrap.Setup
	selectBranchFunc = cli.SelectBranchFromStdio
)

func stdout(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// withFacade sets up the environment, opens the repository and runs fn.
func withFacade(ctx context.Context, cmd *urfavecli.Command, fn func(*ops.Facade) (*ops.OperationResult, error)) error {
	env, err := setupFunc(ctx, cmd)
	if err != nil {
		return err
	}
	facade, err := env.OpenFacade(ctx)
	if err != nil {
		return err
	}
	res, err := fn(facade)
	if err != nil {
		return err
	}
	return cli.PrintResult(stdout(cmd), res)
}

func statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   "Show the current branch and changed files",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			env, err := setupFunc(ctx, cmd)
			if err != nil {
				return err
			}
			facade, err := env.OpenFacade(ctx)
			if err != nil {
				return err
			}
			snap := facade.Snapshot()
			cli.PrintStatus(stdout(cmd), snap)
			if len(snap.Errors) > 0 {
				return fmt.Errorf("refresh incomplete: %s failed", strings.Join(snap.Errors, ", "))
			}
			return nil
		},
	}
}

func stageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "stage",
		Aliases:   []string{"add"},
		Usage:     "Stage files for the next commit",
		ArgsUsage: "<path>...",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "all",
				Aliases: []string{"A"},
				Usage:   "Stage every change, including untracked files",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if cmd.Bool("all") && cmd.NArg() > 0 {
				return fmt.Errorf("--all cannot be combined with paths")
			}
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				if cmd.Bool("all") {
					return f.StageAll(ctx)
				}
				return f.Stage(ctx, cmd.Args().Slice())
			})
		},
	}
}

func unstageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "unstage",
		Aliases:   []string{"reset"},
		Usage:     "Remove files from the index, keeping their changes",
		ArgsUsage: "<path>...",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				return f.Unstage(ctx, cmd.Args().Slice())
			})
		},
	}
}

func commitCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "commit",
		Usage: "Commit the staged changes",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message",
			},
			&urfavecli.BoolFlag{
				Name:  "push",
				Usage: "Push after a successful commit",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			message := cmd.String("message")
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				if cmd.Bool("push") {
					return f.CommitAndPush(ctx, message)
				}
				return f.Commit(ctx, message)
			})
		},
	}
}

func pullCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "pull",
		Usage: "Pull from the upstream branch",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				return f.Pull(ctx)
			})
		},
	}
}

func pushCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "push",
		Usage: "Push to the upstream branch",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				return f.Push(ctx)
			})
		},
	}
}

func branchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "branch",
		Usage:     "List, create, switch or merge branches",
		ArgsUsage: "[name]",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "create",
				Aliases: []string{"c"},
				Usage:   "Create the branch and switch to it",
			},
			&urfavecli.BoolFlag{
				Name:    "switch",
				Aliases: []string{"s"},
				Usage:   "Switch to the branch; prompts when no name is given",
			},
			&urfavecli.BoolFlag{
				Name:  "merge",
				Usage: "Merge the branch into the current one",
			},
		},
		Action: handleBranchAction,
	}
}

func handleBranchAction(ctx context.Context, cmd *urfavecli.Command) error {
	selected := 0
	for _, name := range []string{"create", "switch", "merge"} {
		if cmd.Bool(name) {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("--create, --switch and --merge are mutually exclusive")
	}
	name := cmd.Args().First()
	if selected == 0 && name != "" {
		return fmt.Errorf("branch name %q needs one of --create, --switch or --merge", name)
	}

	if selected == 0 {
		env, err := setupFunc(ctx, cmd)
		if err != nil {
			return err
		}
		facade, err := env.OpenFacade(ctx)
		if err != nil {
			return err
		}
		cli.PrintBranches(stdout(cmd), facade.Snapshot().Branches)
		return nil
	}

	return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
		switch {
		case cmd.Bool("create"):
			return f.CreateBranch(ctx, name)
		case cmd.Bool("merge"):
			return f.MergeBranch(ctx, name)
		}
		if name == "" {
			branches := f.Snapshot().Branches
			picked, err := selectBranchFunc(branches.All, branches.Current)
			if err != nil {
				return nil, err
			}
			name = picked
		}
		return f.SwitchBranch(ctx, name)
	})
}

func logCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "log",
		Aliases: []string{"history"},
		Usage:   "Show recent commits",
		Flags: []urfavecli.Flag{
			&urfavecli.IntFlag{
				Name:  "n",
				Usage: "Number of commits (defaults to history_count)",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return withFacade(ctx, cmd, func(f *ops.Facade) (*ops.OperationResult, error) {
				return f.ViewHistory(ctx, int(cmd.Int("n")))
			})
		},
	}
}

func cloneCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "clone",
		Usage:     "Clone a repository",
		ArgsUsage: "<url> [destination]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			url := cmd.Args().Get(0)
			dest := cmd.Args().Get(1)
			if dest == "" {
				dest = cloneDestination(url)
			}
			env, err := setupFunc(ctx, cmd)
			if err != nil {
				return err
			}
			res, err := ops.Clone(ctx, env.Executor, url, dest)
			if err != nil {
				return err
			}
			if err := cli.PrintResult(stdout(cmd), res); err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Cloned into %s\n", res.Repository.Path)
			return nil
		},
	}
}

func initCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "init",
		Usage:     "Create a new repository",
		ArgsUsage: "[directory]",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			dest := cmd.Args().First()
			if dest == "" {
				dest = "."
			}
			env, err := setupFunc(ctx, cmd)
			if err != nil {
				return err
			}
			res, err := ops.Init(ctx, env.Executor, dest)
			if err != nil {
				return err
			}
			if err := cli.PrintResult(stdout(cmd), res); err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Initialized repository in %s\n", res.Repository.Path)
			return nil
		},
	}
}

// cloneDestination derives the directory name git itself would pick for url.
func cloneDestination(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return ""
	}
	name := path.Base(url)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}
