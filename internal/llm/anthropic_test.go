package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satishjasthi/repo-lens/internal/config"
)

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("anthropic-version = %q", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// System messages travel in the dedicated field, not the list
		if req.System != "be helpful" {
			t.Errorf("system = %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{"id":"msg-test","content":[{"type":"text","text":"claude "},{"type":"text","text":"answer"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Provider:       "anthropic",
		Model:          "claude-sonnet-4-20250514",
		APIBase:        server.URL,
		APIKey:         "sk-ant-test",
		RequestTimeout: 10 * time.Second,
	}
	client := NewAnthropicClient(cfg)
	got, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "claude answer" {
		t.Errorf("Complete() = %q", got)
	}
}
