package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes status lines to err and command results to out. Results
// are always JSON so stdout can be piped.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// NewPrinter creates a printer. Colors follow fatih/color's terminal and
// NO_COLOR detection unless noColor is set.
func NewPrinter(out, err io.Writer, noColor bool) *Printer {
	return &Printer{out: out, err: err, useColors: !noColor && !color.NoColor}
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.err, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[OK] "+format+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

// Hint prints a follow-up suggestion.
func (p *Printer) Hint(format string, args ...any) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.err, "  "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "  "+format+"\n", args...)
}

// JSON writes v to out as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RawJSON re-indents an already encoded payload. An empty payload prints
// nothing.
func (p *Printer) RawJSON(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return p.JSON(raw)
}
