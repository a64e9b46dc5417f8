package jsgen

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// emitDispatch lowers a function whose CFG needed the fallback path
// (spec.md §4.7 rule 3): every block becomes one `case` of a
// `switch (__bb)` nested inside `while (true)`, with terminators rewritten
// into assignments to __bb followed by a `break` out of the switch (which
// re-enters the while loop and dispatches to the new block).
func (e *emitter) emitDispatch(w *writer, f *hir.Func) (hostIO bool, err *Error) {
	w.raw("let __bb = %d;", f.Entry)
	w.raw("while (true) {")
	w.push()
	w.raw("switch (__bb) {")
	w.push()

	for bi := range f.Blocks {
		blk := &f.Blocks[bi]
		w.raw("case %d: {", blk.ID)
		w.push()

		for si := range blk.Statements {
			host, serr := e.emitStmt(w, blk, &blk.Statements[si])
			if serr != nil {
				return hostIO, serr
			}
			hostIO = hostIO || host
		}

		term := &blk.Terminator
		switch term.Kind {
		case hir.TermReturn:
			if rerr := e.emitReturn(w, blk, term); rerr != nil {
				return hostIO, rerr
			}

		case hir.TermPanic:
			w.stmt(term.Span, "throw new Error(%q);", term.PanicMsg)

		case hir.TermJump:
			w.stmt(term.Span, "__bb = %d;", term.JumpTarget)
			w.raw("break;")

		case hir.TermBreak, hir.TermContinue:
			w.stmt(term.Span, "__bb = %d;", term.LoopTarget)
			w.raw("break;")

		case hir.TermIf:
			cond, host, cerr := e.exprText(blk, term.IfCond)
			if cerr != nil {
				return hostIO, cerr
			}
			hostIO = hostIO || host
			w.raw("if (%s) { __bb = %d; } else { __bb = %d; }", cond, term.IfThen, term.IfElse)
			w.raw("break;")

		case hir.TermMatch:
			scrutinee := e.placeText(term.MatchScrutinee)
			for i, arm := range term.MatchArms {
				kw := "if"
				if i > 0 {
					kw = "else if"
				}
				w.raw("%s (%s === %q) { __bb = %d; }", kw, scrutinee, arm.TagName, arm.Target)
			}
			if term.MatchDefault != ids.NoBlockId {
				if len(term.MatchArms) > 0 {
					w.raw("else { __bb = %d; }", term.MatchDefault)
				} else {
					w.raw("__bb = %d;", term.MatchDefault)
				}
			}
			w.raw("break;")

		default:
			return hostIO, errf(term.Span, "unsupported terminator kind %d in dispatch emission", term.Kind)
		}

		w.pop()
		w.raw("}")
	}

	w.pop()
	w.raw("}")
	w.pop()
	w.raw("}")

	return hostIO, nil
}
