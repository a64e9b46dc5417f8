package hir

import "github.com/nyejames/beanstalk-sub005/internal/ids"

// SimplifyCFG runs once per function after borrow checking and before LIR
// lowering (spec.md's supplemented CFG-cleanup feature). It collapses
// trivial-jump blocks and prunes blocks the entry can no longer reach,
// structured after the teacher's internal/mir.SimplifyCFG four-phase
// algorithm: build a redirect map, rewrite every terminator through it,
// compute reachability by DFS from the entry, then compact and renumber.
//
// Only TermJump blocks with zero statements and zero JumpArgs are ever
// treated as trivial: a jump that carries phi-less arguments changes what
// value flows into its target, so collapsing through it would silently
// drop that assignment.
func SimplifyCFG(f *Func) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}

	redirects := buildRedirectMap(f)
	applyRedirects(f, redirects)
	reachable := computeReachability(f)
	compactBlocks(f, reachable)
}

func isTrivialJumpBlock(f *Func, id ids.BlockId) bool {
	if id < 0 || int(id) >= len(f.Blocks) {
		return false
	}
	bb := &f.Blocks[id]
	return len(bb.Statements) == 0 && bb.Terminator.Kind == TermJump && len(bb.Terminator.JumpArgs) == 0
}

// buildRedirectMap finds every trivial-jump block and maps its id to the
// final, non-trivial target reached by following its jump chain.
func buildRedirectMap(f *Func) map[ids.BlockId]ids.BlockId {
	redirects := make(map[ids.BlockId]ids.BlockId)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if len(bb.Statements) != 0 || bb.Terminator.Kind != TermJump || len(bb.Terminator.JumpArgs) != 0 {
			continue
		}
		target := bb.Terminator.JumpTarget
		visited := make(map[ids.BlockId]bool)
		for !visited[target] {
			visited[target] = true
			if next, ok := redirects[target]; ok {
				target = next
				continue
			}
			if isTrivialJumpBlock(f, target) {
				target = f.Blocks[target].Terminator.JumpTarget
				continue
			}
			break
		}
		redirects[bb.ID] = target
	}
	return redirects
}

// applyRedirects rewrites every terminator's block-id fields through the
// redirect map, and redirects the function entry if it pointed at a
// now-collapsed block.
func applyRedirects(f *Func, redirects map[ids.BlockId]ids.BlockId) {
	if len(redirects) == 0 {
		return
	}

	redirect := func(id ids.BlockId) ids.BlockId {
		if newID, ok := redirects[id]; ok {
			return newID
		}
		return id
	}

	for i := range f.Blocks {
		term := &f.Blocks[i].Terminator
		switch term.Kind {
		case TermJump:
			term.JumpTarget = redirect(term.JumpTarget)
		case TermIf:
			term.IfThen = redirect(term.IfThen)
			term.IfElse = redirect(term.IfElse)
		case TermMatch:
			if len(term.MatchArms) > 0 {
				arms := make([]MatchArm, len(term.MatchArms))
				copy(arms, term.MatchArms)
				term.MatchArms = arms
			}
			for j := range term.MatchArms {
				term.MatchArms[j].Target = redirect(term.MatchArms[j].Target)
			}
			if term.MatchDefault != ids.NoBlockId {
				term.MatchDefault = redirect(term.MatchDefault)
			}
		case TermBreak, TermContinue:
			term.LoopTarget = redirect(term.LoopTarget)
		}
	}

	f.Entry = redirect(f.Entry)
}

// computeReachability runs a DFS from the function entry over the
// successors named by each terminator kind.
func computeReachability(f *Func) []bool {
	reachable := make([]bool, len(f.Blocks))

	var visit func(id ids.BlockId)
	visit = func(id ids.BlockId) {
		if id < 0 || int(id) >= len(f.Blocks) || reachable[id] {
			return
		}
		reachable[id] = true

		term := &f.Blocks[id].Terminator
		switch term.Kind {
		case TermJump:
			visit(term.JumpTarget)
		case TermIf:
			visit(term.IfThen)
			visit(term.IfElse)
		case TermMatch:
			for _, arm := range term.MatchArms {
				visit(arm.Target)
			}
			if term.MatchDefault != ids.NoBlockId {
				visit(term.MatchDefault)
			}
		case TermBreak, TermContinue:
			visit(term.LoopTarget)
		}
		// TermReturn and TermPanic have no successors.
	}

	visit(f.Entry)
	return reachable
}

// compactBlocks drops every unreachable block and renumbers the survivors
// so that slice index again equals block id.
func compactBlocks(f *Func, reachable []bool) {
	count := 0
	for _, r := range reachable {
		if r {
			count++
		}
	}

	if count == len(f.Blocks) {
		for i := range f.Blocks {
			f.Blocks[i].ID = ids.BlockId(i)
		}
		return
	}

	oldToNew := make(map[ids.BlockId]ids.BlockId, count)
	newBlocks := make([]Block, 0, count)
	for i, keep := range reachable {
		if keep {
			oldToNew[ids.BlockId(i)] = ids.BlockId(len(newBlocks))
			newBlocks = append(newBlocks, f.Blocks[i])
		}
	}

	remap := func(id ids.BlockId) ids.BlockId {
		if newID, ok := oldToNew[id]; ok {
			return newID
		}
		return id
	}

	for i := range newBlocks {
		newBlocks[i].ID = ids.BlockId(i)
		term := &newBlocks[i].Terminator
		switch term.Kind {
		case TermJump:
			term.JumpTarget = remap(term.JumpTarget)
		case TermIf:
			term.IfThen = remap(term.IfThen)
			term.IfElse = remap(term.IfElse)
		case TermMatch:
			if len(term.MatchArms) > 0 {
				arms := make([]MatchArm, len(term.MatchArms))
				copy(arms, term.MatchArms)
				term.MatchArms = arms
			}
			for j := range term.MatchArms {
				term.MatchArms[j].Target = remap(term.MatchArms[j].Target)
			}
			if term.MatchDefault != ids.NoBlockId {
				term.MatchDefault = remap(term.MatchDefault)
			}
		case TermBreak, TermContinue:
			term.LoopTarget = remap(term.LoopTarget)
		}
	}

	f.Blocks = newBlocks
	f.Entry = remap(f.Entry)
}
