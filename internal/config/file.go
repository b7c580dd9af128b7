package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// Repository path
	Repo string `yaml:"repo,omitempty"`

	// Provider selection: "openai" or "anthropic"
	Provider string `yaml:"provider,omitempty"`

	// Model settings
	Model   string `yaml:"model,omitempty"`
	APIBase string `yaml:"api_base,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`

	// Context settings
	Commits     int  `yaml:"commits,omitempty"`
	IncludeDiff bool `yaml:"include_diff,omitempty"`
	MaxRounds   int  `yaml:"max_rounds,omitempty"`

	// GitTimeout is the per-command git timeout in seconds
	GitTimeout int `yaml:"git_timeout,omitempty"`

	// Prompt overrides
	Prompts *PromptsConfig `yaml:"prompts,omitempty"`
}

// PromptsConfig holds prompt template overrides
type PromptsConfig struct {
	System string `yaml:"system,omitempty"`
	Plan   string `yaml:"plan,omitempty"`
	Answer string `yaml:"answer,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", ".repo-lens", ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "repo-lens", ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "repo-lens", ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from the first file found
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}
	return nil, os.ErrNotExist
}

func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// ApplyFileConfig merges file configuration into the Config. Values already
// set (from flags) are never overwritten.
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}
	if c.RepoPath == "" && fc.Repo != "" {
		c.RepoPath = fc.Repo
	}
	if c.Provider == "" && fc.Provider != "" {
		c.Provider = fc.Provider
	}
	if c.Model == "" && fc.Model != "" {
		c.Model = fc.Model
	}
	if c.APIBase == "" && fc.APIBase != "" {
		c.APIBase = fc.APIBase
	}
	if c.APIKey == "" && fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if c.CommitLimit == 0 && fc.Commits > 0 {
		c.CommitLimit = fc.Commits
	}
	if c.MaxRounds == 0 && fc.MaxRounds > 0 {
		c.MaxRounds = fc.MaxRounds
	}
	if c.GitTimeout == 0 && fc.GitTimeout > 0 {
		c.GitTimeout = time.Duration(fc.GitTimeout) * time.Second
	}
	if !c.IncludeDiff && fc.IncludeDiff {
		c.IncludeDiff = true
	}
	if fc.Prompts != nil {
		if c.SystemPrompt == "" && fc.Prompts.System != "" {
			c.SystemPrompt = fc.Prompts.System
		}
		if c.PlanPrompt == "" && fc.Prompts.Plan != "" {
			c.PlanPrompt = fc.Prompts.Plan
		}
		if c.AnswerPrompt == "" && fc.Prompts.Answer != "" {
			c.AnswerPrompt = fc.Prompts.Answer
		}
	}
}
