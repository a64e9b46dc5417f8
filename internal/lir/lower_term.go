package lir

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

func (l *lowerer) lowerTerminator(blk *hir.Block) *Error {
	t := &blk.Terminator
	switch t.Kind {
	case hir.TermReturn:
		return l.lowerReturnTerm(blk, t)
	case hir.TermJump:
		return l.lowerJumpTerm(blk, t)
	case hir.TermIf:
		return l.lowerIfTerm(blk, t)
	case hir.TermBreak, hir.TermContinue:
		l.emit(Instr{Op: OpBr, Block: t.LoopTarget})
		return nil
	case hir.TermPanic:
		l.emitExitDrops()
		l.emit(Instr{Op: OpUnreachable})
		return nil
	case hir.TermMatch:
		return l.lowerMatchTerm(blk, t)
	default:
		return loweringErr(t.Span, "unsupported HIR terminator kind %d in LIR lowering", t.Kind)
	}
}

// emitExitDrops conditionally frees every heap-owned local in the function.
// This is deliberately function-wide rather than region-scoped: it satisfies
// "every owned-heap local still in scope at an exit point is dropped on
// every exit path" without tracking which region each exit actually
// unwinds through. A local already moved out (and thus untagged) is a no-op
// drop, so over-dropping past a narrower region boundary is harmless.
func (l *lowerer) emitExitDrops() {
	for i, loc := range l.locals {
		if loc.HeapOwned {
			l.emit(Instr{Op: OpCondDrop, Local: localIDFromIndex(i)})
		}
	}
}

func (l *lowerer) lowerReturnTerm(blk *hir.Block, t *hir.Terminator) *Error {
	if t.ReturnExpr != hir.NoExprID {
		if _, err := l.lowerExpr(blk, t.ReturnExpr); err != nil {
			return err
		}
	}
	l.emitExitDrops()
	l.emit(Instr{Op: OpReturn})
	return nil
}

func (l *lowerer) lowerJumpTerm(blk *hir.Block, t *hir.Terminator) *Error {
	for _, arg := range t.JumpArgs {
		vt, err := l.lowerExpr(blk, arg.Value)
		if err != nil {
			return err
		}
		_ = vt
		idx, ok := l.localIndex[arg.Target]
		if !ok {
			return loweringErr(t.Span, "jump argument target local not allocated")
		}
		l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(idx)})
	}
	l.emit(Instr{Op: OpBr, Block: t.JumpTarget})
	return nil
}

func (l *lowerer) lowerIfTerm(blk *hir.Block, t *hir.Terminator) *Error {
	if _, err := l.lowerExpr(blk, t.IfCond); err != nil {
		return err
	}
	l.emit(Instr{Op: OpBrIf, Block: t.IfThen})
	l.emit(Instr{Op: OpBr, Block: t.IfElse})
	return nil
}

// lowerMatchTerm dispatches on the scrutinee's positional index within
// MatchArms (spec.md §3 HirTerminator::Match carries no external tag->int
// table at this layer, only arm order), staging the scrutinee once in a
// scratch local since each arm needs its own comparison.
func (l *lowerer) lowerMatchTerm(blk *hir.Block, t *hir.Terminator) *Error {
	vt, err := l.lowerPlaceLoad(t.MatchScrutinee)
	if err != nil {
		return err
	}
	scratch := l.scratch(vt)
	l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(scratch)})

	for i, arm := range t.MatchArms {
		l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
		switch vt {
		case I64:
			l.emit(Instr{Op: OpI64Const, I64: int64(i)})
			l.emit(Instr{Op: OpI64Eq})
		default:
			l.emit(Instr{Op: OpI32Const, I32: int32(i)})
			l.emit(Instr{Op: OpI32Eq})
		}
		l.emit(Instr{Op: OpBrIf, Block: arm.Target})
	}

	if t.MatchDefault != ids.NoBlockId {
		l.emit(Instr{Op: OpBr, Block: t.MatchDefault})
	} else {
		l.emit(Instr{Op: OpUnreachable})
	}
	return nil
}
