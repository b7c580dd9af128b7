// Package config loads and validates the process-wide configuration.
//
// Configuration is resolved once per invocation from (in priority order)
// explicit CLI flags, environment variables, an optional YAML config file,
// and built-in defaults. The resulting Config is read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/satishjasthi/repo-lens/internal/constants"
)

// Environment variable names
const (
	EnvRepo         = "REPO_LENS_REPO"
	EnvProvider     = "REPO_LENS_PROVIDER"
	EnvModel        = "REPO_LENS_MODEL"
	EnvAPIBase      = "REPO_LENS_API_BASE"
	EnvAPIKey       = "REPO_LENS_API_KEY"
	EnvTimeout      = "REPO_LENS_TIMEOUT"
	EnvGitTimeout   = "REPO_LENS_GIT_TIMEOUT"
	EnvCommits      = "REPO_LENS_COMMITS"
	EnvIncludeDiff  = "REPO_LENS_INCLUDE_DIFF"
	EnvMaxRounds    = "REPO_LENS_MAX_ROUNDS"
	EnvSystemPrompt = "REPO_LENS_SYSTEM_PROMPT"
	EnvPlanPrompt   = "REPO_LENS_PLAN_PROMPT"
	EnvAnswerPrompt = "REPO_LENS_ANSWER_PROMPT"
	EnvLogLevel     = "REPO_LENS_LOG_LEVEL"

	// Fallback key sources checked when REPO_LENS_API_KEY is unset
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// Errors
var (
	ErrInvalidProvider = errors.New("invalid provider. Use 'openai' or 'anthropic'")
	ErrAPIKeyNotFound  = errors.New("no API key configured. Set REPO_LENS_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY")
)

// Config holds the application configuration
type Config struct {
	// Repository path; empty means current working directory
	RepoPath string

	// Provider selection: "openai", "anthropic", or "" (auto-detect)
	Provider string
	Model    string
	APIBase  string
	APIKey   string

	// Timeouts and bounds
	RequestTimeout time.Duration
	GitTimeout     time.Duration
	CommitLimit    int
	MaxRounds      int
	IncludeDiff    bool

	// Prompt templates
	SystemPrompt string
	PlanPrompt   string
	AnswerPrompt string

	// Flags
	Verbose bool
	Render  bool
}

// NewConfig creates a new Config with zero values; call Validate to
// populate it from the environment.
func NewConfig() *Config {
	return &Config{}
}

// Validate loads configuration from the config file and environment,
// applies defaults, and checks provider settings. Flag values already set
// on the Config take precedence over everything else.
func (c *Config) Validate() error {
	// A .env next to the working directory mirrors the behavior of the
	// typical local setup; missing files are not an error.
	_ = godotenv.Load()

	if c.RepoPath == "" {
		c.RepoPath = os.Getenv(EnvRepo)
	}

	if c.Provider == "" {
		c.Provider = os.Getenv(EnvProvider)
	}

	if c.Model == "" {
		c.Model = os.Getenv(EnvModel)
	}
	if c.APIBase != "" {
		c.APIBase = strings.TrimSuffix(c.APIBase, "/")
	}
	if c.APIBase == "" {
		c.APIBase = strings.TrimSuffix(os.Getenv(EnvAPIBase), "/")
	}

	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if c.APIKey == "" {
		// Auto-detect the provider from whichever vendor key is present
		if key := strings.TrimSpace(os.Getenv(EnvOpenAIKey)); key != "" {
			c.APIKey = key
			if c.Provider == "" {
				c.Provider = "openai"
			}
		} else if key := strings.TrimSpace(os.Getenv(EnvAnthropicKey)); key != "" {
			c.APIKey = key
			if c.Provider == "" {
				c.Provider = "anthropic"
			}
		}
	}

	if c.CommitLimit == 0 {
		c.CommitLimit = envInt(EnvCommits, 0)
	}
	if c.GitTimeout == 0 {
		c.GitTimeout = envDuration(EnvGitTimeout, 0)
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = envInt(EnvMaxRounds, 0)
	}
	if !c.IncludeDiff {
		c.IncludeDiff = os.Getenv(EnvIncludeDiff) == "1"
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = os.Getenv(EnvSystemPrompt)
	}
	if c.PlanPrompt == "" {
		c.PlanPrompt = os.Getenv(EnvPlanPrompt)
	}
	if c.AnswerPrompt == "" {
		c.AnswerPrompt = os.Getenv(EnvAnswerPrompt)
	}

	// Config file fills whatever flags and environment left unset
	if fileConfig, err := LoadConfigFile(); err == nil {
		c.ApplyFileConfig(fileConfig)
	}

	// The provider may come from any of the sources above, so it is
	// checked only after all of them have been merged
	c.Provider = strings.ToLower(c.Provider)
	switch c.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidProvider, c.Provider)
	}

	// Built-in defaults
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		if c.Provider == "anthropic" {
			c.Model = constants.DefaultAnthropicModel
		} else {
			c.Model = constants.DefaultOpenAIModel
		}
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = envDuration(EnvTimeout, constants.DefaultProviderTimeout)
	}
	if c.GitTimeout == 0 {
		c.GitTimeout = constants.DefaultGitTimeout
	}
	if c.CommitLimit == 0 {
		c.CommitLimit = constants.DefaultCommitLimit
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = constants.DefaultMaxRounds
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = constants.DefaultSystemPrompt
	}
	if c.PlanPrompt == "" {
		c.PlanPrompt = constants.DefaultPlanPrompt
	}
	if c.AnswerPrompt == "" {
		c.AnswerPrompt = constants.DefaultAnswerPrompt
	}

	return nil
}

// RequireAPIKey returns an error when no provider key is configured.
// Local OpenAI-compatible endpoints (Ollama, LM Studio) need no key, so
// this is only enforced when no custom API base is set.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" && c.APIBase == "" {
		return ErrAPIKeyNotFound
	}
	return nil
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	// Plain numbers are seconds; otherwise accept Go duration syntax
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}
