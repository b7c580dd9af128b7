package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
	"github.com/spf13/cobra"

	"github.com/satishjasthi/repo-lens/internal/display"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
	"github.com/satishjasthi/repo-lens/internal/llm"
	"github.com/satishjasthi/repo-lens/internal/repoctx"
)

// NewChatCmd creates the chat command: an interactive REPL over the ask
// and agent machinery.
func NewChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive repository chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runChat(cmd.Context())
		},
	}
}

// chatSession holds the state for one interactive session. Ask-mode turns
// share a conversation; agent-mode questions each run a fresh bounded
// session.
type chatSession struct {
	app       *App
	client    llm.Client
	repo      string
	agentMode bool
	messages  []llm.Message
	exitFlag  bool
}

func (app *App) runChat(ctx context.Context) error {
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

	fmt.Println("repo-lens - Interactive Mode")
	fmt.Printf("Repository: %s\n", repo)
	fmt.Printf("Provider: %s\n", app.providerLabel())
	fmt.Println("Type /help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Println()

	session := &chatSession{
		app:    app,
		client: client,
		repo:   repo,
	}
	session.resetConversation(ctx)

	p := prompt.New(
		func(input string) { session.handle(ctx, input) },
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle("repo-lens"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithMaxSuggestion(10),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\nGoodbye!")
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("Goodbye!")
					session.exitFlag = true
				}
				return false
			},
		}),
	)
	p.Run()
	return nil
}

// completer provides auto-completion for slash commands.
func (s *chatSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	mode := "ask"
	if s.agentMode {
		mode = "agent"
	}
	suggestions := []prompt.Suggest{
		{Text: "/agent", Description: "Toggle agent mode (current: " + mode + ")"},
		{Text: "/model", Description: "Show/switch model (current: " + s.app.cfg.Model + ")"},
		{Text: "/clear", Description: "Clear conversation history"},
		{Text: "/help", Description: "Show all available commands"},
		{Text: "/exit", Description: "Exit interactive mode"},
		{Text: "/q", Description: "Exit (alias)"},
	}
	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

// handle processes one line of input.
func (s *chatSession) handle(ctx context.Context, input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	if strings.HasPrefix(input, "/") {
		s.handleSlash(ctx, input)
		return
	}

	if s.agentMode {
		if err := s.app.runAgent(ctx, input); err != nil {
			display.ShowError(err.Error())
		}
		return
	}

	s.messages = append(s.messages, llm.Message{Role: "user", Content: input})
	sp := display.NewSpinner("Thinking...")
	sp.Start()
	answer, err := s.client.Complete(ctx, s.messages)
	sp.Stop()
	if err != nil {
		display.ShowError(err.Error())
		// Drop the failed turn so a retry does not duplicate it
		s.messages = s.messages[:len(s.messages)-1]
		return
	}
	s.messages = append(s.messages, llm.Message{Role: "assistant", Content: answer})
	display.ShowAnswer(answer)
}

func (s *chatSession) handleSlash(ctx context.Context, input string) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/exit", "/q", "/quit":
		fmt.Println("Goodbye!")
		s.exitFlag = true
	case "/clear", "/c":
		s.resetConversation(ctx)
		fmt.Println("Conversation cleared.")
	case "/agent":
		s.agentMode = !s.agentMode
		if s.agentMode {
			fmt.Println("Agent mode on: questions run the plan-execute loop.")
		} else {
			fmt.Println("Agent mode off: questions use the context snapshot.")
		}
	case "/model":
		if len(fields) > 1 {
			s.app.cfg.Model = fields[1]
			fmt.Printf("Model switched to %s\n", s.app.cfg.Model)
		} else {
			fmt.Printf("Current model: %s\n", s.app.cfg.Model)
		}
	case "/help", "/h":
		fmt.Println("Commands:")
		fmt.Println("  /agent        Toggle between ask and agent mode")
		fmt.Println("  /model [name] Show or switch the model")
		fmt.Println("  /clear        Clear conversation history")
		fmt.Println("  /exit         Exit interactive mode")
	default:
		fmt.Printf("Unknown command: %s (try /help)\n", fields[0])
	}
}

// resetConversation starts a fresh ask-mode conversation seeded with the
// system prompt and a current repository snapshot.
func (s *chatSession) resetConversation(ctx context.Context) {
	snapshot := repoctx.NewBuilder(s.repo, s.app.cfg).Build(ctx, "")
	s.messages = []llm.Message{
		{Role: "system", Content: s.app.cfg.SystemPrompt},
		{Role: "user", Content: "Repository context:\n" + snapshot},
		{Role: "assistant", Content: "Understood. Ask me anything about this repository."},
	}
}
