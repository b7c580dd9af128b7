package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/logging"
)

// DefaultOpenAIBase is used when no custom API base is configured.
const DefaultOpenAIBase = "https://api.openai.com/v1"

// chatRequest is the Chat Completions API request body
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// chatResponse is the Chat Completions API response body
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// openAIErrorResponse is the error envelope returned on non-2xx statuses
type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIClient speaks the OpenAI-compatible chat completions API. With a
// custom APIBase it also serves Ollama, LM Studio, and other compatible
// local endpoints.
type OpenAIClient struct {
	httpClient *http.Client
	config     *config.Config
	apiBase    string
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	transport := http.DefaultTransport
	if cfg.Verbose {
		logger := logging.New(logging.Options{
			Level:  logging.LevelDebug,
			Format: logging.FormatJSON,
		})
		transport = logging.NewLoggingRoundTripper(http.DefaultTransport, logging.NewHTTPLogger(logger))
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = DefaultOpenAIBase
	}

	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		apiBase: apiBase,
	}
}

// Complete sends the messages and returns the assistant's text.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return WithRetry(ctx, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", uuid.New().String())
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to send request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			var errResp openAIErrorResponse
			errMsg := fmt.Sprintf("status code %d", resp.StatusCode)
			if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
				errMsg = errResp.Error.Message
			}
			return "", &APIError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("provider error: %s", errMsg),
			}
		}

		var chatResp chatResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return "", fmt.Errorf("provider returned no choices")
		}

		return StripThinking(chatResp.Choices[0].Message.Content), nil
	})
}

// Close releases client resources. The shared transport needs no teardown.
func (c *OpenAIClient) Close() {}
