// Package cmd implements the CLI commands for repo-lens: ask (one-shot
// question over a repository snapshot), agent (bounded plan-execute
// loop), chat (interactive REPL), git (pass-through wrappers), and shell
// (guarded command execution in the repo root).
package cmd
