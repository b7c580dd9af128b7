// Package shellguard classifies shell commands by risk before the shell
// pass-through runs them. Unlike the agent path, which executes only
// allow-listed git subcommands, the shell command runs whatever the user
// typed; this classifier is what stands between a typo and a disaster.
package shellguard

import (
	"regexp"
	"strings"
)

// RiskLevel represents the risk level of a command
type RiskLevel int

const (
	// Safe commands are read-only
	Safe RiskLevel = iota
	// NeedsConfirm commands modify state
	NeedsConfirm
	// Dangerous commands are potentially destructive and refused without --force
	Dangerous
)

// Safe read-only commands
var safeCommands = []string{
	"ls", "cat", "pwd", "echo", "head", "tail", "grep", "find",
	"which", "whoami", "date", "wc", "sort", "uniq", "diff",
	"env", "printenv", "df", "du", "ps", "tree",
	"file", "stat", "basename", "dirname", "realpath",
}

// Safe command patterns for read-only operations
var safePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git\s+(status|log|diff|branch|show|remote|describe|blame|shortlog|grep)`),
	regexp.MustCompile(`^go\s+(list|version|env)`),
	regexp.MustCompile(`^npm\s+(list|ls|view|info|outdated)`),
	regexp.MustCompile(`^pip\s+(list|show|freeze)`),
	regexp.MustCompile(`^cargo\s+(tree|search|check)`),
}

// Dangerous command patterns that are refused without --force
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+(-[rf]*\s+)?/`),       // rm -rf / or variations
	regexp.MustCompile(`\bsudo\b`),                 // Any sudo command
	regexp.MustCompile(`dd\s+if=`),                 // dd commands
	regexp.MustCompile(`mkfs`),                     // Format filesystem
	regexp.MustCompile(`:\(\)\{`),                  // Fork bomb
	regexp.MustCompile(`curl.*\|\s*(sh|bash|zsh)`), // Pipe to shell
	regexp.MustCompile(`wget.*\|\s*(sh|bash|zsh)`), // Pipe to shell
	regexp.MustCompile(`>\s*/dev/sd`),              // Write to disk device
	regexp.MustCompile(`chmod.*777`),               // Overly permissive chmod
	regexp.MustCompile(`>\s*/etc/`),                // Write to /etc directory
	regexp.MustCompile(`rm\s+-rf\s+[~$]`),          // rm -rf with home or variable
	regexp.MustCompile(`git\s+push\s+.*--force`),   // Force push
}

// commandChainingPattern detects chaining operators that could smuggle a
// dangerous operation behind a safe prefix
var commandChainingPattern = regexp.MustCompile(`[;&|]{1,2}`)

// Classify determines the risk level of a shell command
func Classify(cmd string) RiskLevel {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return Dangerous
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(cmd) {
			return Dangerous
		}
	}

	// Chained commands can hide anything behind a safe first word
	if commandChainingPattern.MatchString(cmd) {
		return NeedsConfirm
	}

	fields := strings.Fields(cmd)
	firstWord := fields[0]
	for _, safe := range safeCommands {
		if firstWord == safe {
			return Safe
		}
	}
	for _, pattern := range safePatterns {
		if pattern.MatchString(cmd) {
			return Safe
		}
	}

	return NeedsConfirm
}

// Describe returns a human-readable description of the risk level
func Describe(level RiskLevel) string {
	switch level {
	case Safe:
		return "safe read-only command"
	case NeedsConfirm:
		return "command may modify state"
	case Dangerous:
		return "potentially destructive command"
	default:
		return "unknown risk level"
	}
}
