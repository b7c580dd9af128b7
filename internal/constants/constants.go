// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultProviderTimeout is the timeout for LLM provider requests
	DefaultProviderTimeout = 60 * time.Second
	// DefaultGitTimeout is the per-command timeout for git execution
	DefaultGitTimeout = 30 * time.Second
)

// Application defaults
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultCommitLimit    = 10
	DefaultMaxRounds      = 2
	MaxCommandsPerRound   = 4
	// MaxOutputBytes bounds each captured stdout/stderr stream before it
	// is handed to the model as context.
	MaxOutputBytes = 4000
)

// Default prompt templates. All three can be overridden via environment
// variables (see the config package).
const (
	DefaultSystemPrompt = "You are a repository analyst. Use the provided Git context to answer questions. " +
		"Always cite commit hashes and authors when relevant."

	DefaultPlanPrompt = "You are a Git analyst. Decide which read-only Git commands to run to answer the " +
		"user's question. Return STRICT JSON: " +
		`{"commands": [{"command": "git ...", "reason": "..."}], "need_more": false}` +
		" with at most 4 entries. Set need_more to true only if you expect to need another round " +
		"of commands after seeing these results. " +
		"IMPORTANT: Commands are executed directly, NOT through a shell. " +
		"NEVER use shell operators (|, >, <), command substitution ($( ), ` `), or variable expansion ($VAR)."

	DefaultAnswerPrompt = "You are a repository analyst. Use ONLY the provided Git command outputs (and repository " +
		"context) to answer the question. Cite commit hashes, authors, and dates when relevant. If the data is " +
		"insufficient, say so explicitly."
)
