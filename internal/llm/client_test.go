package llm

import (
	"errors"
	"testing"

	"github.com/satishjasthi/repo-lens/internal/config"
)

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no block", "plain answer", "plain answer"},
		{
			"single block",
			"<think>let me reason about this</think>\nthe answer",
			"the answer",
		},
		{
			"multiline block",
			"<think>\nstep one\nstep two\n</think>\nfinal text",
			"final text",
		},
		{
			"multiple blocks",
			"<think>a</think>first<think>b</think> second",
			"second",
		},
		{"only a block", "<think>nothing else</think>", ""},
		{"unclosed block untouched", "<think>still going", "<think>still going"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinking(tt.in); got != tt.want {
				t.Errorf("StripThinking(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		client, err := NewClient(&config.Config{Provider: "openai", APIKey: "sk-test"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if _, ok := client.(*OpenAIClient); !ok {
			t.Errorf("NewClient() = %T, want *OpenAIClient", client)
		}
	})

	t.Run("openai without key for local endpoint", func(t *testing.T) {
		client, err := NewClient(&config.Config{Provider: "openai", APIBase: "http://localhost:11434/v1"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		client.Close()
	})

	t.Run("anthropic", func(t *testing.T) {
		client, err := NewClient(&config.Config{Provider: "anthropic", APIKey: "sk-ant-test"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if _, ok := client.(*AnthropicClient); !ok {
			t.Errorf("NewClient() = %T, want *AnthropicClient", client)
		}
	})

	t.Run("anthropic requires key", func(t *testing.T) {
		_, err := NewClient(&config.Config{Provider: "anthropic"})
		if !errors.Is(err, config.ErrAPIKeyNotFound) {
			t.Errorf("NewClient() error = %v, want ErrAPIKeyNotFound", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := NewClient(&config.Config{Provider: "mystery"}); err == nil {
			t.Error("NewClient() accepted an unknown provider")
		}
	})
}
