// Package prompt asks the user yes/no questions and shows them the outcome
// of each operation.
//
// Confirmations are suspend points: the checkout service blocks on
// [Prompter.Confirm] until an answer arrives, and a negative answer means
// nothing is changed. On an interactive terminal questions are asked with huh.
// Without a terminal the answer comes from --yes/--no, defaulting to no.
package prompt

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/Iron-Ham/dwcheck/internal/errors"
)

// Question is a two-choice prompt.
type Question struct {
	Title       string
	Description string
	Affirmative string // label for yes, e.g. "Confirm"
	Negative    string // label for no, e.g. "Cancel"
}

// Prompter answers questions.
type Prompter interface {
	Confirm(ctx context.Context, q Question) (bool, error)
}

// Static answers every question the same way.
type Static bool

// Confirm returns the fixed answer.
func (s Static) Confirm(ctx context.Context, q Question) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(s), nil
}

// Func adapts a function to Prompter.
type Func func(ctx context.Context, q Question) (bool, error)

// Confirm calls f.
func (f Func) Confirm(ctx context.Context, q Question) (bool, error) {
	return f(ctx, q)
}

// Huh asks questions with a huh confirm form.
type Huh struct {
	in  io.Reader
	out io.Writer
}

// NewHuh creates a Huh prompter reading from in and drawing on out.
func NewHuh(in io.Reader, out io.Writer) *Huh {
	return &Huh{in: in, out: out}
}

// Confirm shows q and waits for an answer. Aborting the form (ctrl+c, esc)
// counts as a negative answer.
func (h *Huh) Confirm(ctx context.Context, q Question) (bool, error) {
	answer := false
	confirm := huh.NewConfirm().
		Title(q.Title).
		Affirmative(labelOr(q.Affirmative, "Yes")).
		Negative(labelOr(q.Negative, "No")).
		Value(&answer)
	if q.Description != "" {
		confirm = confirm.Description(q.Description)
	}

	form := huh.NewForm(huh.NewGroup(confirm)).
		WithInput(h.in).
		WithOutput(h.out).
		WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return answer, nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// Mode selects how questions are answered.
type Mode int

const (
	// ModeAuto asks on a terminal and says no otherwise.
	ModeAuto Mode = iota
	// ModeYes answers yes to everything.
	ModeYes
	// ModeNo answers no to everything.
	ModeNo
)

// New returns the Prompter for mode. In ModeAuto, huh is used only when both
// in and out are terminals.
func New(mode Mode, in *os.File, out *os.File) Prompter {
	switch mode {
	case ModeYes:
		return Static(true)
	case ModeNo:
		return Static(false)
	}
	if IsTerminal(in) && IsTerminal(out) {
		return NewHuh(in, out)
	}
	return Static(false)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
