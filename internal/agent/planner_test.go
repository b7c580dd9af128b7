package agent

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/satishjasthi/repo-lens/internal/constants"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		commands int
		needMore bool
	}{
		{
			name:     "plain json",
			raw:      `{"commands":[{"command":"git log -n5","reason":"recent history"}],"need_more":false}`,
			commands: 1,
		},
		{
			name: "fenced json",
			raw: "```json\n" +
				`{"commands":[{"command":"git status","reason":"check state"}],"need_more":true}` +
				"\n```",
			commands: 1,
			needMore: true,
		},
		{
			name: "fence without language tag",
			raw: "```\n" +
				`{"commands":[{"command":"git show HEAD","reason":"latest commit"}]}` +
				"\n```",
			commands: 1,
		},
		{
			name: "thinking block before json",
			raw: "<think>I should look at the log first.</think>\n" +
				`{"commands":[{"command":"git log --oneline","reason":"overview"}],"need_more":false}`,
			commands: 1,
		},
		{
			name:     "surrounding whitespace trimmed from fields",
			raw:      `{"commands":[{"command":"  git blame README.md  ","reason":" authorship "}]}`,
			commands: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlan(tt.raw)
			if err != nil {
				t.Fatalf("ParsePlan() error = %v", err)
			}
			if len(plan.Commands) != tt.commands {
				t.Errorf("ParsePlan() commands = %d, want %d", len(plan.Commands), tt.commands)
			}
			if plan.NeedMore != tt.needMore {
				t.Errorf("ParsePlan() need_more = %v, want %v", plan.NeedMore, tt.needMore)
			}
			for _, cmd := range plan.Commands {
				if cmd.Command != strings.TrimSpace(cmd.Command) {
					t.Errorf("ParsePlan() command not trimmed: %q", cmd.Command)
				}
			}
		})
	}
}

func TestParsePlanErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I think you should run git log."},
		{"truncated json", `{"commands":[{"command":"git log"`},
		{"empty command entry", `{"commands":[{"command":"  ","reason":"nothing"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan(tt.raw)
			if !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("ParsePlan() error = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestParsePlanCapsCommands(t *testing.T) {
	var entries []string
	for i := 0; i < constants.MaxCommandsPerRound+3; i++ {
		entries = append(entries, fmt.Sprintf(`{"command":"git log -n%d","reason":"step %d"}`, i+1, i+1))
	}
	raw := fmt.Sprintf(`{"commands":[%s],"need_more":false}`, strings.Join(entries, ","))

	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	if len(plan.Commands) != constants.MaxCommandsPerRound {
		t.Errorf("ParsePlan() commands = %d, want cap of %d", len(plan.Commands), constants.MaxCommandsPerRound)
	}
	// The cap keeps the first entries
	if plan.Commands[0].Command != "git log -n1" {
		t.Errorf("ParsePlan() first command = %q", plan.Commands[0].Command)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
