package reminder

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Notifier delivers notifications. Without permission the scheduler never
// starts.
type Notifier interface {
	Permission() bool
	Notify(n Notification)
}

// Disabled never has permission.
type Disabled struct{}

func (Disabled) Permission() bool    { return false }
func (Disabled) Notify(Notification) {}

// Func delivers notifications to a callback, for example a TUI toast.
type Func func(n Notification)

func (f Func) Permission() bool      { return f != nil }
func (f Func) Notify(n Notification) { f(n) }

// Terminal prints a coloured line and rings the bell.
type Terminal struct {
	Enabled bool
	Out     io.Writer
	// IsTerminal overrides the tty check on stdout.
	IsTerminal func() bool
}

func (t *Terminal) Permission() bool {
	if !t.Enabled {
		return false
	}
	if t.IsTerminal != nil {
		return t.IsTerminal()
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) Notify(n Notification) {
	out := t.Out
	if out == nil {
		out = color.Output
	}
	title := color.New(color.FgYellow, color.Bold).Sprint(n.Title)
	fmt.Fprintf(out, "\a%s %s\n", title, n.Body)
}
