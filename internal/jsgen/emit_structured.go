package jsgen

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// emitStructured lowers a reducible, break/continue-free function body
// straight from HIR terminators (spec.md §4.7 rule 2): TermIf becomes
// if/else, TermJump inlines its target in the current scope, TermMatch
// becomes a switch keyed on the scrutinee place rather than a synthetic
// block id, and TermReturn/TermPanic end a branch.
func (e *emitter) emitStructured(w *writer, f *hir.Func) (hostIO bool, err *Error) {
	visited := make(map[ids.BlockId]bool)

	var emitFrom func(id, until ids.BlockId) *Error
	emitFrom = func(id, until ids.BlockId) *Error {
		for {
			if id == until || id == ids.NoBlockId || visited[id] {
				return nil
			}
			visited[id] = true
			blk := f.BlockByID(id)
			if blk == nil {
				return errf(source.Default(), "jump to unknown block %d", id)
			}

			for i := range blk.Statements {
				host, serr := e.emitStmt(w, blk, &blk.Statements[i])
				if serr != nil {
					return serr
				}
				hostIO = hostIO || host
			}

			term := &blk.Terminator
			switch term.Kind {
			case hir.TermReturn:
				return e.emitReturn(w, blk, term)

			case hir.TermPanic:
				w.stmt(term.Span, "throw new Error(%q);", term.PanicMsg)
				return nil

			case hir.TermJump:
				id = term.JumpTarget
				continue

			case hir.TermIf:
				cond, host, cerr := e.exprText(blk, term.IfCond)
				if cerr != nil {
					return cerr
				}
				hostIO = hostIO || host
				join := findJoin(f, term.IfThen, term.IfElse)

				w.raw("if (%s) {", cond)
				w.push()
				if ierr := emitFrom(term.IfThen, join); ierr != nil {
					return ierr
				}
				w.pop()
				w.raw("} else {")
				w.push()
				if ierr := emitFrom(term.IfElse, join); ierr != nil {
					return ierr
				}
				w.pop()
				w.raw("}")

				id = join
				continue

			case hir.TermMatch:
				scrutinee := e.placeText(term.MatchScrutinee)
				join := findJoinMany(f, matchTargets(term))

				w.raw("switch (%s) {", scrutinee)
				w.push()
				for _, arm := range term.MatchArms {
					w.raw("case %q:", arm.TagName)
					w.push()
					if merr := emitFrom(arm.Target, join); merr != nil {
						return merr
					}
					w.raw("break;")
					w.pop()
				}
				if term.MatchDefault != ids.NoBlockId {
					w.raw("default:")
					w.push()
					if merr := emitFrom(term.MatchDefault, join); merr != nil {
						return merr
					}
					w.raw("break;")
					w.pop()
				} else {
					w.raw("default:")
					w.push()
					w.raw(`throw new Error("unreachable match arm");`)
					w.pop()
				}
				w.pop()
				w.raw("}")

				id = join
				continue

			default:
				return errf(term.Span, "unsupported terminator kind %d in structured emission", term.Kind)
			}
		}
	}

	return hostIO, emitFrom(f.Entry, ids.NoBlockId)
}

func (e *emitter) emitReturn(w *writer, blk *hir.Block, term *hir.Terminator) *Error {
	if term.ReturnExpr == hir.NoExprID {
		w.stmt(term.Span, "return;")
		return nil
	}
	val, _, err := e.exprText(blk, term.ReturnExpr)
	if err != nil {
		return err
	}
	w.stmt(term.Span, "return %s;", val)
	return nil
}

func matchTargets(term *hir.Terminator) []ids.BlockId {
	out := make([]ids.BlockId, 0, len(term.MatchArms)+1)
	for _, arm := range term.MatchArms {
		out = append(out, arm.Target)
	}
	if term.MatchDefault != ids.NoBlockId {
		out = append(out, term.MatchDefault)
	}
	return out
}

// findJoin locates the nearest common block reachable from both a and b —
// the point where an if/else's two branches converge back into straight-
// line code. Returns ids.NoBlockId if no common descendant exists (both
// branches terminate independently, e.g. each ends in its own Return).
func findJoin(f *hir.Func, a, b ids.BlockId) ids.BlockId {
	return findJoinMany(f, []ids.BlockId{a, b})
}

// findJoinMany generalizes findJoin to N branch entry points (a Match's
// arms plus its default).
func findJoinMany(f *hir.Func, starts []ids.BlockId) ids.BlockId {
	if len(starts) == 0 {
		return ids.NoBlockId
	}
	dists := make([]map[ids.BlockId]int, len(starts))
	for i, s := range starts {
		dists[i] = bfsDistances(f, s)
	}

	best := ids.NoBlockId
	bestSum := -1
	for id, d0 := range dists[0] {
		sum := d0
		ok := true
		for i := 1; i < len(dists); i++ {
			d, present := dists[i][id]
			if !present {
				ok = false
				break
			}
			sum += d
		}
		if ok && (bestSum == -1 || sum < bestSum) {
			bestSum = sum
			best = id
		}
	}
	return best
}

func bfsDistances(f *hir.Func, start ids.BlockId) map[ids.BlockId]int {
	dist := map[ids.BlockId]int{start: 0}
	queue := []ids.BlockId{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range successorsOf(f, cur) {
			if _, seen := dist[succ]; !seen {
				dist[succ] = dist[cur] + 1
				queue = append(queue, succ)
			}
		}
	}
	return dist
}

func successorsOf(f *hir.Func, id ids.BlockId) []ids.BlockId {
	blk := f.BlockByID(id)
	if blk == nil {
		return nil
	}
	term := &blk.Terminator
	switch term.Kind {
	case hir.TermJump:
		return []ids.BlockId{term.JumpTarget}
	case hir.TermIf:
		return []ids.BlockId{term.IfThen, term.IfElse}
	case hir.TermMatch:
		return matchTargets(term)
	case hir.TermBreak, hir.TermContinue:
		return []ids.BlockId{term.LoopTarget}
	}
	return nil
}
