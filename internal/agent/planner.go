package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/constants"
	"github.com/satishjasthi/repo-lens/internal/llm"
)

// ErrInvalidPlan reports that the model returned an unusable command plan.
var ErrInvalidPlan = errors.New("invalid command plan")

// PlannedCommand is one step of a plan: a command line plus the model's
// stated rationale for running it.
type PlannedCommand struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// Plan is one planning round's output. NeedMore signals that the model
// expects to want another round after observing these results; the loop's
// round budget has the final say.
type Plan struct {
	Commands []PlannedCommand `json:"commands"`
	NeedMore bool             `json:"need_more"`
}

// Planner asks the LLM which read-only git commands to run next.
type Planner struct {
	client llm.Client
	cfg    *config.Config
}

// NewPlanner creates a Planner backed by the given client.
func NewPlanner(client llm.Client, cfg *config.Config) *Planner {
	return &Planner{client: client, cfg: cfg}
}

// PlanRound issues one LLM planning call. On the first round transcript is
// empty; on replanning rounds the rendered transcript so far is included
// so the model can build on what it has observed. The returned plan is
// capped at MaxCommandsPerRound entries.
func (p *Planner) PlanRound(ctx context.Context, question, repoContext, transcript string) (*Plan, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository context:\n%s\n\n", repoContext)
	if transcript != "" {
		fmt.Fprintf(&sb, "Results of commands already executed:\n%s\n\n", transcript)
	}
	fmt.Fprintf(&sb, "Question: %s\n", question)
	fmt.Fprintf(&sb, "Return at most %d commands.", constants.MaxCommandsPerRound)

	messages := []llm.Message{
		{Role: "system", Content: p.cfg.PlanPrompt},
		{Role: "user", Content: sb.String()},
	}

	raw, err := p.client.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return ParsePlan(raw)
}

// ParsePlan decodes the model's plan JSON, tolerating code fences and
// <think> blocks around the payload.
func ParsePlan(raw string) (*Plan, error) {
	candidate := llm.StripThinking(stripCodeFence(raw))

	var plan Plan
	if err := json.Unmarshal([]byte(candidate), &plan); err != nil {
		return nil, fmt.Errorf("%w: model returned invalid JSON: %s", ErrInvalidPlan, truncateForError(candidate))
	}

	if len(plan.Commands) > constants.MaxCommandsPerRound {
		plan.Commands = plan.Commands[:constants.MaxCommandsPerRound]
	}
	for i, cmd := range plan.Commands {
		if strings.TrimSpace(cmd.Command) == "" {
			return nil, fmt.Errorf("%w: entry %d is missing a command", ErrInvalidPlan, i+1)
		}
		plan.Commands[i].Command = strings.TrimSpace(cmd.Command)
		plan.Commands[i].Reason = strings.TrimSpace(cmd.Reason)
	}
	return &plan, nil
}

// stripCodeFence unwraps a ```...``` fenced block, with or without a
// language tag on the opening fence.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}
	inner := trimmed
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		inner = inner[idx+1:]
	}
	if idx := strings.LastIndex(inner, "```"); idx >= 0 {
		inner = inner[:idx]
	}
	return strings.TrimSpace(inner)
}

func truncateForError(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
