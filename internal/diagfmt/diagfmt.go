// Package diagfmt renders a diag.Bag as colored terminal output (SPEC_FULL.md
// §10 "Diagnostics rendering"), ported from the teacher's
// internal/diagfmt/pretty.go: github.com/fatih/color for severity coloring,
// github.com/mattn/go-runewidth for column-accurate span underlines, gated
// by a NoColor toggle for non-terminal output.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/nyejames/beanstalk-sub005/internal/diag"
)

// Options controls rendering.
type Options struct {
	NoColor bool
	Limit   int // 0 means unbounded
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

// Render writes bag's diagnostics to w, one per paragraph: a colored
// severity/kind header line, the message, and the source location.
func Render(w io.Writer, bag *diag.Bag, opts Options) {
	items := bag.Items()
	n := len(items)
	if opts.Limit > 0 && n > opts.Limit {
		n = opts.Limit
	}
	for _, d := range items[:n] {
		c := severityColor(d.Severity)
		c.DisableColor()
		if !opts.NoColor {
			c.EnableColor()
		}
		header := c.Sprintf("%s[%s]", d.Severity, d.Kind)
		fmt.Fprintf(w, "%s %s\n", header, d.Message)
		fmt.Fprintf(w, "  %s %s\n", underline(d.Message), d.Location.String())
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		fmt.Fprintf(w, "… %d more diagnostics suppressed (--max-diagnostics)\n", len(items)-opts.Limit)
	}
}

// underline produces a caret rule sized by display width rather than byte
// count, the reason go-runewidth is pulled in at all: a message containing
// wide runes must still align under monospaced terminal output.
func underline(text string) string {
	return strings.Repeat("^", runewidth.StringWidth(text))
}

// Summary writes a one-line error/warning count; --quiet does not suppress
// it.
func Summary(w io.Writer, bag *diag.Bag, opts Options) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	c := color.New(color.FgRed, color.Bold)
	c.DisableColor()
	if !opts.NoColor && errs > 0 {
		c.EnableColor()
	}
	fmt.Fprintf(w, "%s\n", c.Sprintf("%d error(s), %d warning(s)", errs, warns))
}
