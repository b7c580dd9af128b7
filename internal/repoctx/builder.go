// Package repoctx builds the fixed repository snapshot used by the ask
// path: branch, status, recent history, and optionally grep matches and
// pending diffs. The snapshot shape is deterministic for a given repo
// state so that identical questions produce identical context payloads.
package repoctx

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
)

// logFormat is the one-line commit format shared by history and grep
// sections: abbreviated hash, author, date, subject.
const logFormat = "--pretty=format:%h | %an | %ad | %s"

// Builder gathers repository context through a git Runner.
type Builder struct {
	runner      *gitcmd.Runner
	commitLimit int
	includeDiff bool
}

// NewBuilder creates a Builder for the repository at dir, honoring the
// configured commit count and diff inclusion settings.
func NewBuilder(dir string, cfg *config.Config) *Builder {
	runner := gitcmd.NewRunner(dir)
	runner.Timeout = cfg.GitTimeout
	return &Builder{
		runner:      runner,
		commitLimit: cfg.CommitLimit,
		includeDiff: cfg.IncludeDiff,
	}
}

// Build produces the snapshot. grep is an optional hint: when non-empty a
// bounded `git log --grep` is appended to bias retrieval. Individual git
// failures are embedded as markers rather than aborting the snapshot.
func (b *Builder) Build(ctx context.Context, grep string) string {
	parts := []string{fmt.Sprintf("Repository: %s", b.runner.Dir)}

	parts = append(parts, "Branch: "+b.tryGit(ctx, "rev-parse", "--abbrev-ref", "HEAD"))
	parts = append(parts, "Status:\n"+b.tryGit(ctx, "status", "-sb"))

	parts = append(parts, "Recent commits:\n"+b.tryGit(ctx,
		"log",
		fmt.Sprintf("-n%d", b.commitLimit),
		"--date=short",
		logFormat,
	))

	if grep != "" {
		parts = append(parts, "Grep results:\n"+b.tryGit(ctx,
			"log",
			"--date=short",
			logFormat,
			"--grep="+grep,
		))
	}

	if b.includeDiff {
		parts = append(parts, "Staged diff:\n"+b.tryGit(ctx, "diff", "--staged"))
		parts = append(parts, "Working diff:\n"+b.tryGit(ctx, "diff"))
	}

	return strings.Join(parts, "\n\n")
}

// tryGit runs a trusted git command and folds failures into the output
// so the model can see them.
func (b *Builder) tryGit(ctx context.Context, args ...string) string {
	out, err := b.runner.RunArgs(ctx, args...)
	if err != nil {
		return fmt.Sprintf("<git error: %v>", err)
	}
	return out
}
