package hir

import (
	"github.com/nyejames/beanstalk-sub005/internal/ast"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// lowerBlockBody lowers a sequence of typed-AST statements into the current
// block, creating new blocks for nested control flow as needed (spec.md
// §4.1 rule 4). It stops early, without error, if the current block becomes
// terminated partway through (e.g. a return in the middle of a body) —
// anything after that point is unreachable and the parser is trusted not to
// have emitted meaningful statements past it.
func (b *builder) lowerBlockBody(stmts []ast.Stmt) *Error {
	for _, s := range stmts {
		if b.block(b.cur).Terminated() {
			return nil
		}
		if err := b.lowerStmt(&s); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) lowerStmt(s *ast.Stmt) *Error {
	switch s.Kind {
	case ast.StmtLet:
		return b.lowerLet(s)
	case ast.StmtAssign:
		return b.lowerAssign(s)
	case ast.StmtExpr:
		return b.lowerExprStmt(s)
	case ast.StmtIf:
		return b.lowerIf(s)
	case ast.StmtLoop:
		return b.lowerLoop(s)
	case ast.StmtBreak:
		return b.lowerBreak(s)
	case ast.StmtContinue:
		return b.lowerContinue(s)
	case ast.StmtReturn:
		return b.lowerReturn(s)
	case ast.StmtPanic:
		return b.lowerPanic(s)
	case ast.StmtMatch:
		return b.lowerMatch(s)
	default:
		return transformErr(s.Span, "unsupported statement kind %d", s.Kind)
	}
}

func (b *builder) lowerLet(s *ast.Stmt) *Error {
	valExpr := b.astFn.Expr(s.Value)
	vid, err := b.lowerExpr(valExpr)
	if err != nil {
		return err
	}
	lid := b.newLocal(valExpr.Type, false)
	b.symToLocal[s.Target] = lid
	if b.sideTable.LocalNames[b.fnID] == nil {
		b.sideTable.LocalNames[b.fnID] = make(map[ids.LocalId]string)
	}
	b.sideTable.LocalNames[b.fnID][lid] = localDebugName(s.Target)
	b.emitStmt(Stmt{Kind: StmtAssign, Span: s.Span, AssignPlace: localPlace(lid, valExpr.Type), AssignExpr: vid})
	return nil
}

func (b *builder) lowerAssign(s *ast.Stmt) *Error {
	if s.Place.IsValid() {
		return transformErr(s.Span, "assignment to a projected place is not supported in this phase")
	}
	lid, ok := b.symToLocal[s.Target]
	if !ok {
		return unresolvedLocalErr(s.Span, localDebugName(s.Target))
	}
	valExpr := b.astFn.Expr(s.Value)
	vid, err := b.lowerExpr(valExpr)
	if err != nil {
		return err
	}
	ty := b.localType(lid)
	b.emitStmt(Stmt{Kind: StmtAssign, Span: s.Span, AssignPlace: localPlace(lid, ty), AssignExpr: vid})
	return nil
}

func (b *builder) lowerExprStmt(s *ast.Stmt) *Error {
	e := b.astFn.Expr(s.Expr)
	if e == nil {
		return transformErr(s.Span, "nil expression statement")
	}
	if e.Kind == ast.ExprCall {
		return b.lowerCallAsStmt(e)
	}
	id, err := b.lowerExpr(e)
	if err != nil {
		return err
	}
	b.emitStmt(Stmt{Kind: StmtExpr, Span: s.Span, Expr: id})
	return nil
}

// lowerIf lowers a source if/else into two branch blocks joined by a common
// successor. A branch that ends in its own terminator (return, break,
// continue, panic) never jumps to the join; if neither branch falls
// through, the join block is left with no predecessors — reachable by
// nothing, which is the correct representation of dead code past a
// two-sided exit (spec.md §4.1 rule 4) — and is closed with a Panic
// terminator so every block stays terminated.
func (b *builder) lowerIf(s *ast.Stmt) *Error {
	cond := b.astFn.Expr(s.Cond)
	condID, err := b.lowerExpr(cond)
	if err != nil {
		return err
	}

	thenID := b.newBlock(b.curRegion)
	elseID := b.newBlock(b.curRegion)
	joinID := b.newBlock(b.curRegion)

	b.setTerminator(Terminator{Kind: TermIf, Span: s.Span, IfCond: condID, IfThen: thenID, IfElse: elseID})

	b.switchTo(thenID)
	if err := b.lowerBlockBody(s.Then); err != nil {
		return err
	}
	thenFalls := !b.block(b.cur).Terminated()
	if thenFalls {
		b.setTerminator(Terminator{Kind: TermJump, Span: s.Span, JumpTarget: joinID})
	}

	b.switchTo(elseID)
	if err := b.lowerBlockBody(s.Else); err != nil {
		return err
	}
	elseFalls := !b.block(b.cur).Terminated()
	if elseFalls {
		b.setTerminator(Terminator{Kind: TermJump, Span: s.Span, JumpTarget: joinID})
	}

	b.switchTo(joinID)
	if !thenFalls && !elseFalls {
		b.setTerminator(Terminator{Kind: TermPanic, Span: s.Span, PanicMsg: "unreachable"})
	}
	return nil
}

// lowerLoop lowers an unconditional loop body with an implicit back edge to
// its header; exit is only reachable through a break (spec.md §4.1 rule 4).
func (b *builder) lowerLoop(s *ast.Stmt) *Error {
	loopRegion := b.newRegion(b.curRegion)
	headerID := b.newBlock(loopRegion)
	exitID := b.newBlock(b.curRegion)

	b.setTerminator(Terminator{Kind: TermJump, Span: s.Span, JumpTarget: headerID})

	b.loopStack = append(b.loopStack, loopCtx{headerBlock: headerID, exitBlock: exitID})
	prevRegion := b.curRegion
	b.curRegion = loopRegion

	b.switchTo(headerID)
	if err := b.lowerBlockBody(s.Body); err != nil {
		b.loopStack = b.loopStack[:len(b.loopStack)-1]
		b.curRegion = prevRegion
		return err
	}
	if !b.block(b.cur).Terminated() {
		b.setTerminator(Terminator{Kind: TermJump, Span: s.Span, JumpTarget: headerID})
	}

	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	b.curRegion = prevRegion
	b.switchTo(exitID)
	return nil
}

func (b *builder) lowerBreak(s *ast.Stmt) *Error {
	if len(b.loopStack) == 0 {
		return transformErr(s.Span, "break outside of a loop")
	}
	target := b.loopStack[len(b.loopStack)-1].exitBlock
	b.setTerminator(Terminator{Kind: TermBreak, Span: s.Span, LoopTarget: target})
	return nil
}

func (b *builder) lowerContinue(s *ast.Stmt) *Error {
	if len(b.loopStack) == 0 {
		return transformErr(s.Span, "continue outside of a loop")
	}
	target := b.loopStack[len(b.loopStack)-1].headerBlock
	b.setTerminator(Terminator{Kind: TermContinue, Span: s.Span, LoopTarget: target})
	return nil
}

func (b *builder) lowerReturn(s *ast.Stmt) *Error {
	if !s.Expr.IsValid() {
		b.setTerminator(Terminator{Kind: TermReturn, Span: s.Span, ReturnExpr: NoExprID})
		return nil
	}
	e := b.astFn.Expr(s.Expr)
	id, err := b.lowerExpr(e)
	if err != nil {
		return err
	}
	b.setTerminator(Terminator{Kind: TermReturn, Span: s.Span, ReturnExpr: id})
	return nil
}

// lowerPanic requires a statically known message: the typed AST is expected
// to have already rejected dynamic panic messages upstream.
func (b *builder) lowerPanic(s *ast.Stmt) *Error {
	e := b.astFn.Expr(s.Expr)
	if e == nil || e.Kind != ast.ExprStringLit {
		return transformErr(s.Span, "panic message must be a string literal")
	}
	b.setTerminator(Terminator{Kind: TermPanic, Span: s.Span, PanicMsg: e.StringVal})
	return nil
}

// lowerMatch lowers a tag-dispatching match statement. The scrutinee must
// lower to a place load; matching on an arbitrary rvalue is out of scope for
// this phase (hand-built HIR tests exercise richer match scrutinees
// directly at the CFG/borrow-checker layer).
func (b *builder) lowerMatch(s *ast.Stmt) *Error {
	scrutExpr := b.astFn.Expr(s.Scrutinee)
	scrutID, err := b.lowerExpr(scrutExpr)
	if err != nil {
		return err
	}
	loaded := b.block(b.cur).ExprByID(scrutID)
	if loaded == nil || loaded.Kind != ExprLoad {
		return transformErr(s.Span, "match scrutinee must be a place expression")
	}
	scrutPlace := loaded.Load

	joinID := b.newBlock(b.curRegion)
	var armBlocks []MatchArm
	var defaultID ids.BlockId = ids.NoBlockId

	for _, arm := range s.Arms {
		armBlockID := b.newBlock(b.curRegion)
		if arm.TagName == "" {
			defaultID = armBlockID
		} else {
			armBlocks = append(armBlocks, MatchArm{TagName: arm.TagName, Target: armBlockID})
		}
	}

	b.setTerminator(Terminator{Kind: TermMatch, Span: s.Span, MatchScrutinee: scrutPlace, MatchArms: armBlocks, MatchDefault: defaultID})

	armIdx := 0
	for _, arm := range s.Arms {
		var targetID ids.BlockId
		if arm.TagName == "" {
			targetID = defaultID
		} else {
			targetID = armBlocks[armIdx].Target
			armIdx++
		}
		b.switchTo(targetID)
		if err := b.lowerBlockBody(arm.Body); err != nil {
			return err
		}
		if !b.block(b.cur).Terminated() {
			b.setTerminator(Terminator{Kind: TermJump, Span: s.Span, JumpTarget: joinID})
		}
	}

	b.switchTo(joinID)
	return nil
}

// localType resolves the declared type of an already-allocated local.
func (b *builder) localType(id ids.LocalId) ids.TypeId {
	for _, l := range b.locals {
		if l.ID == id {
			return l.Type
		}
	}
	return ids.NoTypeId
}
