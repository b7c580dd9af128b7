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

// DefaultAnthropicBase is used when no custom API base is configured.
const DefaultAnthropicBase = "https://api.anthropic.com/v1"

const anthropicVersion = "2023-06-01"

// anthropicRequest is the messages API request body. The system prompt
// travels in its own field rather than as a message.
type anthropicRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// anthropicResponse is the messages API response body
type anthropicResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// anthropicErrorResponse is the error envelope returned on non-2xx statuses
type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient speaks the Anthropic messages API.
type AnthropicClient struct {
	httpClient *http.Client
	config     *config.Config
	apiBase    string
}

// NewAnthropicClient creates a client for the Anthropic messages API.
func NewAnthropicClient(cfg *config.Config) *AnthropicClient {
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
		apiBase = DefaultAnthropicBase
	}

	return &AnthropicClient{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		apiBase: apiBase,
	}
}

// Complete sends the messages and returns the assistant's text. System
// messages are lifted into the dedicated system field.
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.config.Model,
		MaxTokens: 4096,
	}
	for _, msg := range messages {
		if msg.Role == "system" {
			if reqBody.System != "" {
				reqBody.System += "\n\n"
			}
			reqBody.System += msg.Content
			continue
		}
		reqBody.Messages = append(reqBody.Messages, msg)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return WithRetry(ctx, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/messages", bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", uuid.New().String())
		req.Header.Set("x-api-key", c.config.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)

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
			var errResp anthropicErrorResponse
			errMsg := fmt.Sprintf("status code %d", resp.StatusCode)
			if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
				errMsg = errResp.Error.Message
			}
			return "", &APIError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("provider error: %s", errMsg),
			}
		}

		var msgResp anthropicResponse
		if err := json.Unmarshal(body, &msgResp); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}

		var text string
		for _, block := range msgResp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		return StripThinking(text), nil
	})
}

// Close releases client resources. The shared transport needs no teardown.
func (c *AnthropicClient) Close() {}
