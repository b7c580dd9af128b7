// Package agent implements the bounded plan-execute-observe loop that
// turns a natural-language question into a sequence of validated,
// read-only git commands and a final answer.
package agent

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/satishjasthi/repo-lens/internal/gitcmd"
)

// Entry is one transcript record: either an executed command with its
// result, or a rejected command with the rejection reason. Entries are
// immutable once appended.
type Entry struct {
	Command  string
	Reason   string
	Rejected bool
	Result   gitcmd.Result
}

// Executed reports whether the entry holds an execution result.
func (e Entry) Executed() bool {
	return !e.Rejected
}

// Transcript is the ordered log of one agent session. It lives for the
// session only; nothing is persisted.
type Transcript struct {
	SessionID string
	Entries   []Entry
}

// NewTranscript creates an empty transcript with a fresh session id.
func NewTranscript() *Transcript {
	return &Transcript{SessionID: uuid.New().String()}
}

// AddResult appends an execution result in execution order.
func (t *Transcript) AddResult(reason string, result gitcmd.Result) {
	t.Entries = append(t.Entries, Entry{
		Command: result.Spec.String(),
		Reason:  reason,
		Result:  result,
	})
}

// AddRejection records a command that was refused by the validator. The
// rejection is part of the transcript so the model can see it.
func (t *Transcript) AddRejection(command, reason string) {
	t.Entries = append(t.Entries, Entry{
		Command:  command,
		Reason:   reason,
		Rejected: true,
	})
}

// Render formats the transcript as model context: one block per entry
// with command, rationale, outcome, and captured output.
func (t *Transcript) Render() string {
	if len(t.Entries) == 0 {
		return "No commands were executed. Answer using the repository context only."
	}

	blocks := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Rejected {
			blocks = append(blocks, fmt.Sprintf(
				"Command: %s\nStatus: rejected (not executed)\nReason: %s",
				e.Command, e.Reason,
			))
			continue
		}

		status := "success"
		if e.Result.TimedOut {
			status = fmt.Sprintf("timed out after %s", e.Result.Duration.Round(timeRounding))
		} else if e.Result.ExitCode != 0 {
			status = fmt.Sprintf("failed (exit code %d)", e.Result.ExitCode)
		}

		output := strings.TrimSpace(e.Result.Stdout)
		if output == "" {
			output = "<no output>"
		}
		block := fmt.Sprintf(
			"Command: %s\nReason: %s\nStatus: %s\nOutput:\n%s",
			e.Command, e.Reason, status, output,
		)
		if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
			block += "\nStderr:\n" + stderr
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
