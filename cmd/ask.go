package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/display"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
	"github.com/satishjasthi/repo-lens/internal/llm"
	"github.com/satishjasthi/repo-lens/internal/repoctx"
)

// NewAskCmd creates the ask command: a single round-trip question over a
// fixed repository snapshot.
func NewAskCmd(app *App) *cobra.Command {
	var grep string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the configured LLM about the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAsk(cmd.Context(), args[0], grep)
		},
	}

	cmd.Flags().StringVar(&grep, "grep", "", "Optional git --grep hint to bias retrieved commits")
	return cmd
}

func (app *App) runAsk(ctx context.Context, question, grep string) error {
	if err := app.cfg.RequireAPIKey(); err != nil {
		return err
	}

	repo, err := gitcmd.ResolveRepo(ctx, app.cfg.RepoPath)
	if err != nil {
		return err
	}

	repoContext := repoctx.NewBuilder(repo, app.cfg).Build(ctx, grep)

	client, err := llm.NewClient(app.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sp := display.NewSpinner(fmt.Sprintf("Querying %s...", app.providerLabel()))
	sp.Start()
	answer, err := client.Complete(ctx, []llm.Message{
		{Role: "system", Content: app.cfg.SystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Repository context:\n%s\n\nQuestion: %s", repoContext, question)},
	})
	sp.Stop()
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}

	display.ShowAnswer(answer)
	return nil
}
