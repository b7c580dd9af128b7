// Package llm provides a uniform client interface over LLM providers.
// It supports OpenAI-compatible endpoints (OpenAI, Ollama, LM Studio,
// and other compatible servers via a custom API base) and the Anthropic
// messages API, with retry logic for transient failures.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/satishjasthi/repo-lens/internal/config"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the uniform request interface every provider implements.
type Client interface {
	// Complete sends the messages and returns the assistant's text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Close releases any resources held by the client.
	Close()
}

// Ensure both clients implement the Client interface
var _ Client = (*OpenAIClient)(nil)
var _ Client = (*AnthropicClient)(nil)

// NewClient creates a provider client from the configuration. Provider
// selection happened at config time ("openai" or "anthropic"); this only
// wires the concrete implementation.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key: %w", config.ErrAPIKeyNotFound)
		}
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes <think>...</think> reasoning blocks that some
// models emit before their actual answer.
func StripThinking(content string) string {
	if content == "" {
		return ""
	}
	if idx := strings.LastIndex(content, "</think>"); idx >= 0 {
		content = content[idx+len("</think>"):]
	}
	return strings.TrimSpace(thinkBlockRe.ReplaceAllString(content, ""))
}
