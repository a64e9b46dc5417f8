package jsgen

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// isStructured decides between direct if/else/while emission and the
// switch(__bb) dispatcher fallback (spec.md §4.7 rules 2/3).
//
// Any Break or Continue terminator routes to the dispatcher unconditionally:
// spec.md's own S2 scenario requires dispatch for a loop built from nothing
// but an ordinary Continue-to-header/Break-to-exit pair, so "the target is
// the enclosing loop's own boundary" is not treated as a safe case worth
// special-casing here. Beyond that, any back edge at all (a successor that
// is already on the current DFS path) also forces the dispatcher: proving a
// back edge is a genuine natural loop — uniquely dominated, safe to wrap in
// a bare `while(true)` — needs real dominance analysis, and no scenario in
// this spec exercises a loop with zero Break/Continue statements, so the
// simpler, always-safe rule is used instead of building that analysis for a
// case nothing requires.
func isStructured(f *hir.Func) bool {
	onStack := make(map[ids.BlockId]bool)
	done := make(map[ids.BlockId]bool)

	var visit func(id ids.BlockId) bool
	visit = func(id ids.BlockId) bool {
		if id < 0 || int(id) >= len(f.Blocks) {
			return true
		}
		if onStack[id] {
			return false // back edge: cycle found
		}
		if done[id] {
			return true
		}
		onStack[id] = true
		ok := true

		term := &f.Blocks[id].Terminator
		switch term.Kind {
		case hir.TermBreak, hir.TermContinue:
			ok = false
		case hir.TermJump:
			ok = visit(term.JumpTarget)
		case hir.TermIf:
			ok = visit(term.IfThen) && visit(term.IfElse)
		case hir.TermMatch:
			for _, arm := range term.MatchArms {
				if !visit(arm.Target) {
					ok = false
				}
			}
			if term.MatchDefault != ids.NoBlockId {
				if !visit(term.MatchDefault) {
					ok = false
				}
			}
		}

		onStack[id] = false
		done[id] = true
		return ok
	}

	return visit(f.Entry)
}
