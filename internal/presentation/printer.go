package presentation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Printer writes human-readable status lines. Color follows fatih/color's
// terminal detection and NO_COLOR.
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter creates a printer writing status lines to out and errors to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Success prints a green line with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	_, _ = green.Fprintln(p.out, "✓ "+fmt.Sprintf(format, a...))
}

// Warning prints a yellow line with a warning prefix.
func (p *Printer) Warning(format string, a ...any) {
	_, _ = yellow.Fprintln(p.out, "! "+fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func (p *Printer) Step(format string, a ...any) {
	_, _ = cyan.Fprintln(p.out, "→ "+fmt.Sprintf(format, a...))
}

// Info prints an uncolored line.
func (p *Printer) Info(format string, a ...any) {
	_, _ = fmt.Fprintln(p.out, fmt.Sprintf(format, a...))
}

// Error prints a titled error with optional suggestions to the error writer
// and returns an error carrying the title, for cobra's RunE.
func (p *Printer) Error(title string, cause error, suggestions ...string) error {
	_, _ = red.Fprintln(p.err, title)
	if cause != nil {
		_, _ = fmt.Fprintf(p.err, "\n%s\n", cause)
	}
	if len(suggestions) > 0 {
		_, _ = fmt.Fprintln(p.err)
		for _, s := range suggestions {
			_, _ = fmt.Fprintf(p.err, "  • %s\n", strings.TrimSpace(s))
		}
	}
	if cause != nil {
		return &reportedError{fmt.Errorf("%s: %w", title, cause)}
	}
	return &reportedError{errors.New(title)}
}

// reportedError marks an error the printer already showed to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already printed by Printer.Error.
func Reported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}
