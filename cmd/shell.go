package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/display"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
	"github.com/satishjasthi/repo-lens/internal/shellguard"
)

// NewShellCmd creates the shell command: run an arbitrary command inside
// the repository root. This is the one place a shell is involved, and it
// only ever runs what the user themselves typed, gated by the risk
// classifier.
func NewShellCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "shell <command>",
		Short: "Execute a shell command within the repo root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runShell(cmd.Context(), args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Run the command even when classified as risky")
	return cmd
}

func (app *App) runShell(ctx context.Context, command string, force bool) error {
	repo, err := gitcmd.ResolveRepo(ctx, app.cfg.RepoPath)
	if err != nil {
		return err
	}

	risk := shellguard.Classify(command)
	switch {
	case risk == shellguard.Dangerous && !force:
		return fmt.Errorf("refusing to run %s (%s); pass --force to override", command, shellguard.Describe(risk))
	case risk == shellguard.NeedsConfirm && !force:
		if !display.Confirm(fmt.Sprintf("Run %q? (%s)", command, shellguard.Describe(risk))) {
			return fmt.Errorf("command not confirmed")
		}
	}

	sh := exec.CommandContext(ctx, "sh", "-c", command)
	sh.Dir = repo
	sh.Stdout = os.Stdout
	sh.Stderr = os.Stderr
	sh.Stdin = os.Stdin
	if err := sh.Run(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}
