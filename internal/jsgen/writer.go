package jsgen

import (
	"fmt"
	"strings"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// writer accumulates JS source text, honoring Config.Pretty (indentation)
// and Config.EmitLocations (per-statement /* L<line> */ comments).
type writer struct {
	buf    strings.Builder
	cfg    Config
	indent int
}

func newWriter(cfg Config) *writer {
	return &writer{cfg: cfg}
}

func (w *writer) push() { w.indent++ }
func (w *writer) pop()  { w.indent-- }

func (w *writer) pad() {
	if w.cfg.Pretty {
		w.buf.WriteString(strings.Repeat("  ", w.indent))
	}
}

// stmt writes one statement line, prefixed by a location comment when
// Config.EmitLocations is set and span carries a real line number.
func (w *writer) stmt(span source.Span, format string, args ...any) {
	w.pad()
	if w.cfg.EmitLocations && span.Start.Line != 0 {
		fmt.Fprintf(&w.buf, "/* L%d */ ", span.Start.Line)
	}
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteString("\n")
}

// raw writes a line with no location comment, used for control-flow
// scaffolding (braces, case labels) that has no single source span.
func (w *writer) raw(format string, args ...any) {
	w.pad()
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteString("\n")
}

func (w *writer) String() string { return w.buf.String() }
