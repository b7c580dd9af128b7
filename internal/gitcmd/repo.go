package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRepoNotFound reports that the resolved path is not a git working tree.
var ErrRepoNotFound = errors.New("not a git repository")

// ResolveRepo resolves the repository path from (in priority order) the
// explicit value and the current working directory, and verifies it is a
// git working tree. The environment variable is folded into explicit by
// the config layer, so callers pass a single candidate.
func ResolveRepo(ctx context.Context, explicit string) (string, error) {
	path := explicit
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		path = wd
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRepoNotFound, abs)
	}

	if err := VerifyRepo(ctx, abs); err != nil {
		return "", err
	}
	return abs, nil
}

// VerifyRepo checks that dir is a valid git working tree with a single
// rev-parse. Callers re-validate before each session rather than caching.
func VerifyRepo(ctx context.Context, dir string) error {
	runner := NewRunner(dir)
	if _, err := runner.RunArgs(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("%w: %s", ErrRepoNotFound, dir)
	}
	return nil
}
