package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/satishjasthi/repo-lens/internal/constants"
	"github.com/satishjasthi/repo-lens/internal/logging"
)

// Result captures one git invocation. It is immutable once produced.
type Result struct {
	Spec      Spec
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
}

// Success reports whether the command completed with exit code 0.
func (r Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// TruncationMarker is appended to captured output that exceeded the
// per-stream byte bound.
const TruncationMarker = "\n...[truncated]"

// Runner executes git commands as direct argument-vector invocations
// rooted at a repository working directory.
type Runner struct {
	// GitPath is the git binary to invoke. Tests substitute a stub.
	GitPath string
	// Dir is the repository working directory.
	Dir string
	// Timeout bounds each command's wall-clock time.
	Timeout time.Duration
	// MaxOutputBytes bounds each captured stream.
	MaxOutputBytes int

	logger *logging.Logger
}

// NewRunner creates a Runner for the given repository directory with
// default timeout and output bounds.
func NewRunner(dir string) *Runner {
	return &Runner{
		GitPath:        "git",
		Dir:            dir,
		Timeout:        constants.DefaultGitTimeout,
		MaxOutputBytes: constants.MaxOutputBytes,
		logger:         logging.DefaultLogger,
	}
}

// Run executes one Spec and returns its Result. A non-zero exit or a
// timeout is data, not an error: the returned error is non-nil only when
// the process could not be started at all.
func (r *Runner) Run(ctx context.Context, spec Spec) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultGitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{spec.Subcommand}, spec.Args...)
	cmd := exec.CommandContext(ctx, r.GitPath, args...)
	cmd.Dir = r.Dir
	// Killing git can leave a helper process (diff driver, credential
	// helper) holding the output pipes; without a wait delay Run would
	// block until that process exits too.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Spec:     spec,
		Duration: time.Since(start),
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
	} else if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else if !errors.Is(err, exec.ErrWaitDelay) {
			// The process never ran (binary missing, bad dir).
			// ErrWaitDelay means git itself exited cleanly but a pipe
			// inheritor lingered; the captured output is still usable.
			return result, err
		}
	}

	result.Stdout, result.Truncated = r.truncate(stdout.String())
	var errTrunc bool
	result.Stderr, errTrunc = r.truncate(stderr.String())
	result.Truncated = result.Truncated || errTrunc

	r.logger.Debug("git command finished", logging.Fields{
		"subcommand": spec.Subcommand,
		"exit_code":  result.ExitCode,
		"timed_out":  result.TimedOut,
		"duration":   result.Duration.String(),
	})
	return result, nil
}

// RunArgs is a convenience wrapper for trusted internal invocations
// (context building, pass-through commands). It returns trimmed stdout and
// an error carrying stderr when git exits non-zero.
func (r *Runner) RunArgs(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", ErrMissingSubcommand
	}
	result, err := r.Run(ctx, Spec{Subcommand: args[0], Args: args[1:]})
	if err != nil {
		return "", err
	}
	if result.TimedOut {
		return "", context.DeadlineExceeded
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return "", &CommandError{Spec: result.Spec, ExitCode: result.ExitCode, Message: msg}
	}
	return strings.TrimSpace(result.Stdout), nil
}

func (r *Runner) truncate(s string) (string, bool) {
	max := r.MaxOutputBytes
	if max <= 0 {
		max = constants.MaxOutputBytes
	}
	if len(s) <= max {
		return s, false
	}
	// Back up to a rune boundary so the cut never emits invalid UTF-8
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker, true
}

// CommandError reports a git command that exited non-zero.
type CommandError struct {
	Spec     Spec
	ExitCode int
	Message  string
}

func (e *CommandError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("git %s exited with code %d", e.Spec.Subcommand, e.ExitCode)
}
