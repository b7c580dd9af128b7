package repoctx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/constants"
)

func newTestRepo(t *testing.T, commits int) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test User",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test User",
			"GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-q", "-b", "main")
	for i := 1; i <= commits; i++ {
		path := filepath.Join(dir, "file.txt")
		if err := os.WriteFile(path, []byte(fmt.Sprintf("content %d\n", i)), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		run("add", "file.txt")
		run("commit", "-q", "-m", fmt.Sprintf("commit %d", i))
	}
	return dir
}

func testConfig(limit int) *config.Config {
	return &config.Config{
		CommitLimit: limit,
		GitTimeout:  constants.DefaultGitTimeout,
	}
}

func TestBuildSnapshot(t *testing.T) {
	dir := newTestRepo(t, 3)
	builder := NewBuilder(dir, testConfig(2))

	snapshot := builder.Build(context.Background(), "")

	if !strings.Contains(snapshot, "Repository: "+dir) {
		t.Error("Build() missing repository path")
	}
	if !strings.Contains(snapshot, "Branch: main") {
		t.Errorf("Build() missing branch line:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "Status:") {
		t.Error("Build() missing status section")
	}

	// The commit limit bounds history and keeps it newest first
	if strings.Contains(snapshot, "commit 1") {
		t.Error("Build() included a commit beyond the limit")
	}
	pos3 := strings.Index(snapshot, "commit 3")
	pos2 := strings.Index(snapshot, "commit 2")
	if pos3 < 0 || pos2 < 0 {
		t.Fatalf("Build() missing recent commits:\n%s", snapshot)
	}
	if pos3 > pos2 {
		t.Error("Build() commits not newest first")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	dir := newTestRepo(t, 2)
	builder := NewBuilder(dir, testConfig(5))

	first := builder.Build(context.Background(), "")
	second := builder.Build(context.Background(), "")
	if first != second {
		t.Error("Build() produced different snapshots for the same repo state")
	}
}

func TestBuildGrepSection(t *testing.T) {
	dir := newTestRepo(t, 3)
	builder := NewBuilder(dir, testConfig(5))

	snapshot := builder.Build(context.Background(), "commit 2")
	idx := strings.Index(snapshot, "Grep results:")
	if idx < 0 {
		t.Fatalf("Build() missing grep section:\n%s", snapshot)
	}
	section := snapshot[idx:]
	if !strings.Contains(section, "commit 2") {
		t.Errorf("Build() grep section missing match:\n%s", section)
	}
	if strings.Contains(section, "commit 3") {
		t.Errorf("Build() grep section has non-matching commit:\n%s", section)
	}

	// No grep hint, no section
	plain := builder.Build(context.Background(), "")
	if strings.Contains(plain, "Grep results:") {
		t.Error("Build() emitted grep section without a hint")
	}
}

func TestBuildIncludeDiff(t *testing.T) {
	dir := newTestRepo(t, 1)
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("edited\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg := testConfig(5)
	cfg.IncludeDiff = true
	snapshot := NewBuilder(dir, cfg).Build(context.Background(), "")

	if !strings.Contains(snapshot, "Staged diff:") || !strings.Contains(snapshot, "Working diff:") {
		t.Fatalf("Build() missing diff sections:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "+edited") {
		t.Errorf("Build() working diff missing the pending edit:\n%s", snapshot)
	}

	cfg.IncludeDiff = false
	plain := NewBuilder(dir, cfg).Build(context.Background(), "")
	if strings.Contains(plain, "Working diff:") {
		t.Error("Build() emitted diff sections when disabled")
	}
}

func TestBuildEmbedsGitFailures(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	// A directory that is not a repository: every section degrades to a
	// marker instead of aborting the snapshot
	snapshot := NewBuilder(t.TempDir(), testConfig(5)).Build(context.Background(), "")
	if !strings.Contains(snapshot, "<git error:") {
		t.Errorf("Build() did not embed git failures:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "Recent commits:") {
		t.Error("Build() dropped sections on failure")
	}
}
