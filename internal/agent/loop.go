package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satishjasthi/repo-lens/internal/config"
	"github.com/satishjasthi/repo-lens/internal/gitcmd"
	"github.com/satishjasthi/repo-lens/internal/llm"
	"github.com/satishjasthi/repo-lens/internal/logging"
	"github.com/satishjasthi/repo-lens/internal/repoctx"
)

// timeRounding trims sub-millisecond noise from durations shown to the
// model and the user.
const timeRounding = time.Millisecond

// ErrBudgetExceeded reports a session that ran out of planning rounds
// without being able to produce an answer.
var ErrBudgetExceeded = errors.New("planning budget exceeded")

// State is a phase of the agent loop.
type State int

const (
	StatePlanning State = iota
	StateValidating
	StateExecuting
	StateAccumulating
	StateReplanning
	StateAnswering
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateValidating:
		return "validating"
	case StateExecuting:
		return "executing"
	case StateAccumulating:
		return "accumulating"
	case StateReplanning:
		return "replanning"
	case StateAnswering:
		return "answering"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is the outcome of one agent session.
type Result struct {
	Answer     string
	Transcript *Transcript
	Rounds     int
}

// Loop orchestrates planner, validator, executor, and answerer for one
// session. Sessions share no mutable state, so independent Loops may run
// concurrently against independent repositories.
type Loop struct {
	planner *Planner
	runner  *gitcmd.Runner
	client  llm.Client
	cfg     *config.Config
	logger  *logging.Logger

	// Observer, when set, is notified of each state transition and
	// executed command. The CLI uses it for progress display.
	Observer func(state State, detail string)
}

// NewLoop creates a Loop for the repository at dir.
func NewLoop(client llm.Client, cfg *config.Config, dir string) *Loop {
	runner := gitcmd.NewRunner(dir)
	runner.Timeout = cfg.GitTimeout
	return &Loop{
		planner: NewPlanner(client, cfg),
		runner:  runner,
		client:  client,
		cfg:     cfg,
		logger:  logging.DefaultLogger,
	}
}

// Run executes one complete session: plan, validate, execute, accumulate,
// optionally replan within the round budget, then answer. Command-level
// failures (rejections, non-zero exits, timeouts) become transcript data;
// only repository, provider, and budget failures are fatal.
func (l *Loop) Run(ctx context.Context, question string) (*Result, error) {
	// Repository validity is re-checked at session start, not assumed
	if err := gitcmd.VerifyRepo(ctx, l.runner.Dir); err != nil {
		return nil, err
	}

	builder := repoctx.NewBuilder(l.runner.Dir, l.cfg)
	repoContext := builder.Build(ctx, "")

	transcript := NewTranscript()
	maxRounds := l.cfg.MaxRounds
	if maxRounds < 1 {
		maxRounds = 1
	}

	rounds := 0
	for {
		rounds++
		l.transition(StatePlanning, fmt.Sprintf("round %d/%d", rounds, maxRounds))

		plan, err := l.planner.PlanRound(ctx, question, repoContext, l.renderSoFar(transcript))
		if err != nil {
			if rounds == 1 {
				return nil, fmt.Errorf("planning failed: %w", err)
			}
			// A broken replan is not fatal: answer from what we have
			l.logger.Warn("replanning failed, answering with partial transcript", logging.Fields{"error": err.Error()})
			break
		}

		l.transition(StateValidating, fmt.Sprintf("%d proposed commands", len(plan.Commands)))
		accepted := l.validate(plan, transcript)

		l.transition(StateExecuting, fmt.Sprintf("%d accepted commands", len(accepted)))
		// Commands run sequentially: one working tree, one index lock,
		// and the transcript order must match execution order.
		for _, cmd := range accepted {
			result, err := l.runner.Run(ctx, cmd.spec)
			if err != nil {
				return nil, fmt.Errorf("cannot execute git: %w", err)
			}
			l.transition(StateAccumulating, cmd.planned.Command)
			transcript.AddResult(cmd.planned.Reason, result)
		}

		if !plan.NeedMore || rounds >= maxRounds {
			break
		}
		l.transition(StateReplanning, "")
	}

	l.transition(StateAnswering, "")
	answer, err := l.answer(ctx, question, repoContext, transcript)
	if err != nil {
		if len(transcript.Entries) > 0 {
			return nil, fmt.Errorf("%w: collected %d command results but could not generate an answer: %v",
				ErrBudgetExceeded, len(transcript.Entries), err)
		}
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	l.transition(StateDone, "")
	return &Result{
		Answer:     answer,
		Transcript: transcript,
		Rounds:     rounds,
	}, nil
}

// acceptedCommand pairs a planned command with its parsed spec.
type acceptedCommand struct {
	planned PlannedCommand
	spec    gitcmd.Spec
}

// validate filters a plan through the allow-list validator. Disallowed
// commands are recorded as rejected-with-reason and excluded from
// execution; the rejection itself stays in the transcript so the model
// is aware of it.
func (l *Loop) validate(plan *Plan, transcript *Transcript) []acceptedCommand {
	accepted := make([]acceptedCommand, 0, len(plan.Commands))
	for _, cmd := range plan.Commands {
		spec, err := gitcmd.Parse(cmd.Command)
		if err == nil {
			err = gitcmd.Validate(spec)
		}
		if err != nil {
			l.logger.Warn("rejected planned command", logging.Fields{
				"command": cmd.Command,
				"reason":  err.Error(),
			})
			transcript.AddRejection(cmd.Command, err.Error())
			continue
		}
		accepted = append(accepted, acceptedCommand{planned: cmd, spec: spec})
	}
	return accepted
}

// answer issues the final LLM call combining question, context, and the
// full transcript.
func (l *Loop) answer(ctx context.Context, question, repoContext string, transcript *Transcript) (string, error) {
	content := fmt.Sprintf(
		"Repository context:\n%s\n\nQuestion: %s\n\nExecuted command outputs:\n%s\n\n"+
			"Provide a concise answer that cites commands or commit hashes when possible.",
		repoContext, question, transcript.Render(),
	)
	messages := []llm.Message{
		{Role: "system", Content: l.cfg.AnswerPrompt},
		{Role: "user", Content: content},
	}
	return l.client.Complete(ctx, messages)
}

// renderSoFar returns the transcript rendered for replanning, or empty on
// the first round.
func (l *Loop) renderSoFar(transcript *Transcript) string {
	if len(transcript.Entries) == 0 {
		return ""
	}
	return transcript.Render()
}

func (l *Loop) transition(state State, detail string) {
	l.logger.Debug("agent state", logging.Fields{"state": state.String(), "detail": detail})
	if l.Observer != nil {
		l.Observer(state, detail)
	}
}
