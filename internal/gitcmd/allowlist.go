// Package gitcmd validates and executes git commands as direct process
// invocations. No shell is ever involved: commands are argument vectors,
// and pipes, redirection, and substitution have no meaning here.
package gitcmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Spec is a single proposed git invocation: a subcommand plus its
// arguments. It is never executed without passing Validate first.
type Spec struct {
	Subcommand string
	Args       []string
}

// String renders the spec as the command line it corresponds to.
func (s Spec) String() string {
	parts := append([]string{"git", s.Subcommand}, s.Args...)
	return strings.Join(parts, " ")
}

// Allowlist is the fixed set of git subcommands permitted for autonomous
// execution. It is defined at process start and never mutated.
var Allowlist = map[string]bool{
	"log":       true,
	"show":      true,
	"rev-list":  true,
	"rev-parse": true,
	"describe":  true,
	"status":    true,
	"shortlog":  true,
	"cat-file":  true,
	"diff":      true,
	"ls-tree":   true,
	"grep":      true,
	"blame":     true,
}

// AllowedSubcommands returns the allow-list as a sorted, comma-joined
// string for prompts and error messages.
func AllowedSubcommands() string {
	names := make([]string, 0, len(Allowlist))
	for name := range Allowlist {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Validation errors
var (
	ErrEmptyCommand      = errors.New("command is empty")
	ErrNotGit            = errors.New("command must start with 'git'")
	ErrMissingSubcommand = errors.New("command must include a subcommand, e.g. 'git log'")
)

// shellMetaChars are rejected in argument tokens as defense-in-depth.
// Execution never goes through a shell, so these could only ever be
// literal text, but a plan that contains them is a plan that
// misunderstands the execution model.
const shellMetaChars = ";|&<>`"

// Parse splits a command line into a Spec using shell-style word
// splitting (quoting respected, nothing evaluated).
func Parse(command string) (Spec, error) {
	parts, err := shellquote.Split(command)
	if err != nil {
		return Spec{}, fmt.Errorf("cannot parse command: %w", err)
	}
	if len(parts) == 0 {
		return Spec{}, ErrEmptyCommand
	}
	if parts[0] != "git" {
		return Spec{}, ErrNotGit
	}
	if len(parts) == 1 {
		return Spec{}, ErrMissingSubcommand
	}
	return Spec{Subcommand: parts[1], Args: parts[2:]}, nil
}

// Validate accepts a Spec iff its subcommand is exactly a member of the
// allow-list (case-sensitive) and no argument attempts shell
// metacharacter injection. It has no side effects on rejection.
func Validate(spec Spec) error {
	if spec.Subcommand == "" {
		return ErrMissingSubcommand
	}
	if !Allowlist[spec.Subcommand] {
		return fmt.Errorf("subcommand %q is not allowed. Allowed: %s", spec.Subcommand, AllowedSubcommands())
	}
	for _, arg := range spec.Args {
		if strings.ContainsAny(arg, shellMetaChars) {
			return fmt.Errorf("argument %q contains shell metacharacters", arg)
		}
		if strings.Contains(arg, "$(") {
			return fmt.Errorf("argument %q contains command substitution", arg)
		}
	}
	return nil
}
