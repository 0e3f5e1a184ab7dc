// Package confirm gates destructive actions behind an explicit yes.
package confirm

import (
	"io"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Always answers every question the same way.
type Always bool

func (a Always) Confirm(string) bool {
	return bool(a)
}

// Func adapts a function to a Confirmer.
type Func func(prompt string) bool

func (f Func) Confirm(prompt string) bool {
	return f(prompt)
}

// Prompt asks on a terminal with promptui. It refuses when stdin is not a
// terminal, so piped invocations never delete anything without --yes.
type Prompt struct {
	In  io.Reader
	Out io.Writer
	// Interactive overrides the terminal check.
	Interactive func() bool
}

// NewPrompt asks on the process stdin/stdout.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stdout}
}

func (p *Prompt) Confirm(label string) bool {
	if !p.interactive() {
		return false
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }} ",
		Valid:   "{{ . | yellow }} ",
		Invalid: "{{ . | red }} ",
		Success: "{{ . | bold }} ",
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Templates: templates,
		Stdin:     io.NopCloser(p.in()),
		Stdout:    NopCloser(p.out()),
	}

	result, err := prompt.Run()
	if err != nil {
		// promptui reports a "no" answer as ErrAbort.
		return false
	}
	yes, _ := ParseBool(result)
	return yes
}

func (p *Prompt) interactive() bool {
	if p.Interactive != nil {
		return p.Interactive()
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *Prompt) in() io.Reader {
	if p.In == nil {
		return os.Stdin
	}
	return p.In
}

func (p *Prompt) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "no", "NO", "No":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping
// the provided Writer w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
