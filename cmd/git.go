package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/gitcmd"
)

// NewGitCmd creates the git command group: thin pass-throughs to the
// installed git binary, executed directly (no shell) in the resolved
// repository. These run with the user's own authority and are not
// subject to the agent allow-list.
func NewGitCmd(app *App) *cobra.Command {
	gitCmd := &cobra.Command{
		Use:   "git",
		Short: "Thin wrappers around the git CLI",
	}

	gitCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show short branch status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runGit(cmd.Context(), "status", "-sb")
		},
	})

	gitCmd.AddCommand(&cobra.Command{
		Use:   "pull [remote] [branch]",
		Short: "Pull from a remote",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitArgs := append([]string{"pull"}, remoteArgs(args)...)
			return app.runGit(cmd.Context(), gitArgs...)
		},
	})

	gitCmd.AddCommand(&cobra.Command{
		Use:   "push [remote] [branch]",
		Short: "Push to a remote",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitArgs := append([]string{"push"}, remoteArgs(args)...)
			return app.runGit(cmd.Context(), gitArgs...)
		},
	})

	gitCmd.AddCommand(&cobra.Command{
		Use:   "checkout <target>",
		Short: "Check out a branch or commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitArgs := append([]string{"checkout"}, args...)
			return app.runGit(cmd.Context(), gitArgs...)
		},
	})

	createBranch := &cobra.Command{
		Use:   "create-branch <name>",
		Short: "Create and check out a new branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")
			return app.runGit(cmd.Context(), "checkout", "-b", args[0], base)
		},
	}
	createBranch.Flags().String("base", "HEAD", "Base commit for the new branch")
	gitCmd.AddCommand(createBranch)

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent commits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return app.runGit(cmd.Context(),
				"log",
				fmt.Sprintf("-n%d", limit),
				"--date=short",
				"--pretty=format:%h | %an | %ad | %s",
			)
		},
	}
	logCmd.Flags().IntP("limit", "n", 5, "Number of commits to show")
	gitCmd.AddCommand(logCmd)

	gitCmd.AddCommand(&cobra.Command{
		Use:   "run <args>...",
		Short: "Run git with exact arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runGit(cmd.Context(), args...)
		},
	})

	return gitCmd
}

// runGit resolves the repository, runs one git command, and prints its
// output. Non-zero exits surface as fatal errors with git's own message.
func (app *App) runGit(ctx context.Context, args ...string) error {
	repo, err := gitcmd.ResolveRepo(ctx, app.cfg.RepoPath)
	if err != nil {
		return err
	}

	runner := gitcmd.NewRunner(repo)
	runner.Timeout = app.cfg.GitTimeout
	// Pass-through output goes to the user, not into model context, so
	// the context-size bound does not apply.
	runner.MaxOutputBytes = 1 << 20
	out, err := runner.RunArgs(ctx, args...)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

// remoteArgs applies the origin default when no remote is given.
func remoteArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"origin"}
	}
	return args
}
