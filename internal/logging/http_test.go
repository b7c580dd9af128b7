package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsSensitiveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Authorization", true},
		{"authorization", true},
		{"X-Api-Key", true},
		{"Cookie", true},
		{"Content-Type", false},
		{"X-Request-Id", false},
	}
	for _, tt := range tests {
		if got := isSensitiveHeader(tt.header); got != tt.want {
			t.Errorf("isSensitiveHeader(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	input := map[string]interface{}{
		"model":   "gpt-4o-mini",
		"api_key": "sk-secret",
		"nested": map[string]interface{}{
			"token": "abc123",
			"safe":  "visible",
		},
		"list": []interface{}{
			map[string]interface{}{"password": "hunter2"},
		},
	}

	got := redactSensitiveFields(input).(map[string]interface{})

	if got["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, should be untouched", got["model"])
	}
	if got["api_key"] != "[REDACTED]" {
		t.Errorf("api_key = %v, want redacted", got["api_key"])
	}
	nested := got["nested"].(map[string]interface{})
	if nested["token"] != "[REDACTED]" || nested["safe"] != "visible" {
		t.Errorf("nested = %v", nested)
	}
	item := got["list"].([]interface{})[0].(map[string]interface{})
	if item["password"] != "[REDACTED]" {
		t.Errorf("list item = %v", item)
	}
}

func TestLoggingRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"resp-1"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	client := &http.Client{
		Transport: NewLoggingRoundTripper(http.DefaultTransport, NewHTTPLogger(logger)),
	}

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"api_key":"sk-secret","q":"hello"}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sk-secret")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "HTTP request") || !strings.Contains(out, "HTTP response") {
		t.Fatalf("round trip not logged: %q", out)
	}
	if strings.Contains(out, "sk-secret") {
		t.Errorf("secret leaked into logs: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("no redaction markers in logs: %q", out)
	}
	if !strings.Contains(out, `"q":"hello"`) {
		t.Errorf("non-sensitive body fields missing: %q", out)
	}
}
