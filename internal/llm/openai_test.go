package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/satishjasthi/repo-lens/internal/config"
)

func openAITestConfig(base string) *config.Config {
	return &config.Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		APIBase:        base,
		APIKey:         "sk-test",
		RequestTimeout: 10 * time.Second,
	}
}

func openAIResponse(content string) string {
	body := map[string]any{
		"id": "chatcmpl-test",
		"choices": []map[string]any{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Request-Id"); got == "" {
			t.Error("missing X-Request-Id header")
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIResponse("the answer")))
	}))
	defer server.Close()

	client := NewOpenAIClient(openAITestConfig(server.URL))
	got, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "the answer" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestOpenAICompleteStripsThinking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(openAIResponse("<think>pondering</think>clean answer")))
	}))
	defer server.Close()

	client := NewOpenAIClient(openAITestConfig(server.URL))
	got, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "clean answer" {
		t.Errorf("Complete() = %q, want thinking stripped", got)
	}
}

func TestOpenAICompleteRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(openAIResponse("recovered")))
	}))
	defer server.Close()

	client := NewOpenAIClient(openAITestConfig(server.URL))
	got, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Complete() = %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestOpenAICompleteAuthFailureIsImmediate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(openAITestConfig(server.URL))
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Complete() error = %v, want 401 APIError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on auth failure)", calls.Load())
	}
}

func TestOpenAICompleteNoKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want unset for local endpoints", got)
		}
		_, _ = w.Write([]byte(openAIResponse("local answer")))
	}))
	defer server.Close()

	cfg := openAITestConfig(server.URL)
	cfg.APIKey = ""
	client := NewOpenAIClient(cfg)
	got, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "local answer" {
		t.Errorf("Complete() = %q", got)
	}
}
