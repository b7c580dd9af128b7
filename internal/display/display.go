// Package display handles terminal output: sections, errors, spinners,
// and optional markdown rendering of model answers.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
)

var renderer *glamour.TermRenderer

// InitRenderer initializes the markdown renderer. Call once when --render
// is requested; rendering silently degrades to plain text on failure.
func InitRenderer() error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	renderer = r
	return nil
}

// ShowAnswer prints the model's answer, rendered as markdown when the
// renderer is initialized.
func ShowAnswer(answer string) {
	if renderer != nil {
		if out, err := renderer.Render(answer); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(answer)
}

// ShowError prints an error message to stderr
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// ShowSection prints a titled block of output
func ShowSection(title, body string) {
	fmt.Printf("== %s ==\n", title)
	if body != "" {
		fmt.Println(body)
	}
	fmt.Println()
}

// ShowCommandResult prints one executed (or rejected) command with its
// outcome, for the agent path's transparency output.
func ShowCommandResult(command, reason, status, output string) {
	fmt.Printf("$ %s (%s)\n", command, status)
	if reason != "" {
		fmt.Printf("  Reason: %s\n", reason)
	}
	if output != "" {
		for _, line := range strings.Split(output, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
	fmt.Println()
}

// Confirm asks a yes/no question on stderr and reads the reply from
// stdin. Anything other than y/yes declines.
func Confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	var reply string
	if _, err := fmt.Scanln(&reply); err != nil {
		return false
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "y" || reply == "yes"
}

// Spinner wraps a terminal spinner shown while waiting on the provider.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with the given suffix message. It writes
// to stderr so piped stdout stays clean.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start begins the spinner animation
func (sp *Spinner) Start() {
	sp.s.Start()
}

// UpdateMessage changes the spinner suffix while running
func (sp *Spinner) UpdateMessage(message string) {
	sp.s.Suffix = " " + message
}

// Stop halts the spinner and clears the line
func (sp *Spinner) Stop() {
	sp.s.Stop()
}
