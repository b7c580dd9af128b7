package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/agent"
	"github.com/satishjasthi/repo-lens/internal/display"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
	"github.com/satishjasthi/repo-lens/internal/llm"
)

// NewAgentCmd creates the agent command: plan and execute read-only git
// commands to answer the question.
func NewAgentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "agent <question>",
		Short: "Plan and execute Git commands to answer the question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAgent(cmd.Context(), args[0])
		},
	}
}

func (app *App) runAgent(ctx context.Context, question string) error {
	if err := app.cfg.RequireAPIKey(); err != nil {
		return err
	}

	repo, err := gitcmd.ResolveRepo(ctx, app.cfg.RepoPath)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(app.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sp := display.NewSpinner(fmt.Sprintf("Running agent with %s...", app.providerLabel()))
	sp.Start()

	loop := agent.NewLoop(client, app.cfg, repo)
	loop.Observer = func(state agent.State, detail string) {
		msg := state.String()
		if detail != "" {
			msg += ": " + detail
		}
		sp.UpdateMessage(msg)
	}

	result, err := loop.Run(ctx, question)
	sp.Stop()
	if err != nil {
		return err
	}

	if len(result.Transcript.Entries) > 0 {
		fmt.Println("Executed Git commands:")
		for _, entry := range result.Transcript.Entries {
			status := "success"
			output := strings.TrimSpace(entry.Result.Stdout)
			if entry.Rejected {
				status = "rejected"
				output = ""
			} else if entry.Result.TimedOut {
				status = "timed out"
			} else if entry.Result.ExitCode != 0 {
				status = fmt.Sprintf("failed, exit code %d", entry.Result.ExitCode)
				if output == "" {
					output = strings.TrimSpace(entry.Result.Stderr)
				}
			}
			display.ShowCommandResult(entry.Command, entry.Reason, status, output)
		}
	}

	display.ShowAnswer(result.Answer)
	return nil
}
