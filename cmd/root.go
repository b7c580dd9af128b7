package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/display"
	"github.com/satishjasthi/repo-lens/internal/logging"
)

// App holds the application state shared by all commands.
type App struct {
	cfg *config.Config
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg: config.NewConfig(),
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "repo-lens",
		Short: "Git-aware repository assistant",
		Long: `repo-lens answers natural-language questions about a Git repository by
collecting repository signals (status, history, diffs, grep results) and
forwarding them to an LLM provider.

Examples:
  repo-lens ask "What changed in the last release?"
  repo-lens ask --grep auth "Who worked on authentication?"
  repo-lens agent "Which commit introduced the config package?"
  repo-lens chat
  repo-lens git log -n 5
  repo-lens shell "wc -l *.go"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.Validate(); err != nil {
				return err
			}
			if app.cfg.Verbose {
				logging.DefaultLogger.SetLevel(logging.LevelDebug)
			} else if lvl := os.Getenv(config.EnvLogLevel); lvl != "" {
				logging.DefaultLogger.SetLevel(logging.ParseLevel(lvl))
			}
			if app.cfg.Render {
				if err := display.InitRenderer(); err != nil {
					logging.Warn("markdown renderer unavailable", logging.Fields{"error": err.Error()})
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.cfg.RepoPath, "repo", "r", "", "Path to the Git repository (default: $REPO_LENS_REPO or current directory)")
	rootCmd.PersistentFlags().BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&app.cfg.Render, "render", false, "Render answers as markdown")
	rootCmd.PersistentFlags().StringVarP(&app.cfg.Model, "model", "m", "", "Model name (default: $REPO_LENS_MODEL)")
	rootCmd.PersistentFlags().StringVar(&app.cfg.Provider, "provider", "", "LLM provider: openai or anthropic (default: auto-detect)")

	rootCmd.AddCommand(NewAskCmd(app))
	rootCmd.AddCommand(NewAgentCmd(app))
	rootCmd.AddCommand(NewChatCmd(app))
	rootCmd.AddCommand(NewGitCmd(app))
	rootCmd.AddCommand(NewShellCmd(app))

	if err := rootCmd.Execute(); err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}
}

// providerLabel returns "Provider (model)" for output headers.
func (app *App) providerLabel() string {
	return app.cfg.Provider + " (" + app.cfg.Model + ")"
}
