package hir

import (
	"testing"

	"github.com/nyejames/beanstalk-sub005/internal/ast"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/symbols"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// assertWellFormed checks spec.md §8 universal property 1: every block has
// exactly one terminator, it is never one of the block's own Statements, and
// every jump/branch/match target names a block that actually exists.
func assertWellFormed(t *testing.T, fn *Func) {
	t.Helper()
	for i, blk := range fn.Blocks {
		if ids.BlockId(i) != blk.ID {
			t.Fatalf("block index %d has ID %d, expected alignment", i, blk.ID)
		}
		if !blk.Terminated() {
			t.Fatalf("block %d has no terminator", blk.ID)
		}
		checkTarget := func(target ids.BlockId, label string) {
			if target == ids.NoBlockId {
				return
			}
			if fn.BlockByID(target) == nil {
				t.Fatalf("block %d's %s targets nonexistent block %d", blk.ID, label, target)
			}
		}
		term := blk.Terminator
		switch term.Kind {
		case TermJump:
			checkTarget(term.JumpTarget, "Jump")
		case TermIf:
			checkTarget(term.IfThen, "IfThen")
			checkTarget(term.IfElse, "IfElse")
		case TermBreak, TermContinue:
			checkTarget(term.LoopTarget, "LoopTarget")
		case TermMatch:
			for _, arm := range term.MatchArms {
				checkTarget(arm.Target, "MatchArm")
			}
			checkTarget(term.MatchDefault, "MatchDefault")
		}
	}
}

func newTestInterner() *types.Interner {
	return types.NewInterner()
}

// TestBuildModuleLetAndReturn covers a plain `let` binding flowing into a
// `return` of the bound local (spec.md §4.1 rules 1 and 6).
func TestBuildModuleLetAndReturn(t *testing.T) {
	interner := newTestInterner()
	intTy := interner.Builtins().Int
	const sym symbols.SymbolID = 0

	fn := ast.Function{
		Path:       1,
		ReturnType: intTy,
		Exprs: []ast.Expr{
			{ID: 0, Kind: ast.ExprInt, Type: intTy, IntVal: 1},
			{ID: 1, Kind: ast.ExprIdent, Type: intTy, Ident: sym},
		},
		Body: []ast.Stmt{
			{Kind: ast.StmtLet, Target: sym, Value: 0},
			{Kind: ast.StmtReturn, Expr: 1},
		},
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	hmod, err := BuildModule(&mod, nil, interner)
	if err != nil {
		t.Fatalf("BuildModule failed: %v", err)
	}
	if len(hmod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(hmod.Functions))
	}
	hfn := &hmod.Functions[0]
	assertWellFormed(t, hfn)

	if len(hfn.Blocks) != 1 {
		t.Fatalf("expected a single entry block, got %d", len(hfn.Blocks))
	}
	entry := hfn.Blocks[0]
	if len(entry.Statements) != 1 || entry.Statements[0].Kind != StmtAssign {
		t.Fatalf("expected one StmtAssign, got %+v", entry.Statements)
	}
	if entry.Terminator.Kind != TermReturn {
		t.Fatalf("expected TermReturn, got %v", entry.Terminator.Kind)
	}
	retExpr := entry.ExprByID(entry.Terminator.ReturnExpr)
	if retExpr == nil || retExpr.Kind != ExprLoad {
		t.Fatalf("expected the return to load a place, got %+v", retExpr)
	}
}

// TestBuildModuleImplicitUnitReturn covers spec.md §4.1 rule 6: a
// unit-returning function whose body falls off the end gets a synthesized
// TermReturn of a unit tuple.
func TestBuildModuleImplicitUnitReturn(t *testing.T) {
	interner := newTestInterner()
	fn := ast.Function{
		Path:       1,
		ReturnType: interner.Builtins().Unit,
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	hmod, err := BuildModule(&mod, nil, interner)
	if err != nil {
		t.Fatalf("BuildModule failed: %v", err)
	}
	hfn := &hmod.Functions[0]
	assertWellFormed(t, hfn)

	term := hfn.Blocks[0].Terminator
	if term.Kind != TermReturn {
		t.Fatalf("expected synthesized TermReturn, got %v", term.Kind)
	}
	retExpr := hfn.Blocks[0].ExprByID(term.ReturnExpr)
	if retExpr == nil || retExpr.Kind != ExprTupleConstruct || len(retExpr.TupleElems) != 0 {
		t.Fatalf("expected a synthesized empty tuple, got %+v", retExpr)
	}
}

// TestBuildModuleFallThroughNonUnitIsError covers the corresponding failure
// mode: falling off the end of a non-unit-returning function is rejected.
func TestBuildModuleFallThroughNonUnitIsError(t *testing.T) {
	interner := newTestInterner()
	fn := ast.Function{
		Path:       1,
		ReturnType: interner.Builtins().Int,
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	if _, err := BuildModule(&mod, nil, interner); err == nil {
		t.Fatalf("expected an error for a non-unit function falling through")
	}
}

// TestBuildModuleIfElseJoin covers spec.md §4.1 rule 4: an if/else lowers to
// an entry block terminated by TermIf, two branch blocks, and a join block.
func TestBuildModuleIfElseJoin(t *testing.T) {
	interner := newTestInterner()
	boolTy := interner.Builtins().Bool

	fn := ast.Function{
		Path:       1,
		ReturnType: boolTy,
		Exprs: []ast.Expr{
			{ID: 0, Kind: ast.ExprBool, Type: boolTy, BoolVal: true},
			{ID: 1, Kind: ast.ExprBool, Type: boolTy, BoolVal: true},
			{ID: 2, Kind: ast.ExprBool, Type: boolTy, BoolVal: false},
		},
		Body: []ast.Stmt{
			{
				Kind: ast.StmtIf,
				Cond: 0,
				Then: []ast.Stmt{{Kind: ast.StmtReturn, Expr: 1}},
				Else: []ast.Stmt{{Kind: ast.StmtReturn, Expr: 2}},
			},
		},
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	hmod, err := BuildModule(&mod, nil, interner)
	if err != nil {
		t.Fatalf("BuildModule failed: %v", err)
	}
	hfn := &hmod.Functions[0]
	assertWellFormed(t, hfn)

	if len(hfn.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (entry/then/else/join), got %d", len(hfn.Blocks))
	}
	entryTerm := hfn.Blocks[0].Terminator
	if entryTerm.Kind != TermIf {
		t.Fatalf("expected entry to end in TermIf, got %v", entryTerm.Kind)
	}
	if hfn.Blocks[entryTerm.IfThen].Terminator.Kind != TermReturn {
		t.Fatalf("expected then-branch to return")
	}
	if hfn.Blocks[entryTerm.IfElse].Terminator.Kind != TermReturn {
		t.Fatalf("expected else-branch to return")
	}
}

// TestBuildModuleLoopBreak covers spec.md §4.1 rule 4's loop form: a loop
// body reachable only through its header, with Break routed to the exit
// block allocated outside the loop's region.
func TestBuildModuleLoopBreak(t *testing.T) {
	interner := newTestInterner()
	boolTy := interner.Builtins().Bool
	unitTy := interner.Builtins().Unit

	fn := ast.Function{
		Path:       1,
		ReturnType: unitTy,
		Exprs: []ast.Expr{
			{ID: 0, Kind: ast.ExprBool, Type: boolTy, BoolVal: true},
		},
		Body: []ast.Stmt{
			{
				Kind: ast.StmtLoop,
				Body: []ast.Stmt{
					{
						Kind: ast.StmtIf,
						Cond: 0,
						Then: []ast.Stmt{{Kind: ast.StmtBreak}},
						Else: nil,
					},
				},
			},
		},
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	hmod, err := BuildModule(&mod, nil, interner)
	if err != nil {
		t.Fatalf("BuildModule failed: %v", err)
	}
	hfn := &hmod.Functions[0]
	assertWellFormed(t, hfn)

	var sawBreak bool
	for _, blk := range hfn.Blocks {
		if blk.Terminator.Kind == TermBreak {
			sawBreak = true
		}
	}
	if !sawBreak {
		t.Fatalf("expected a TermBreak terminator somewhere in the lowered function")
	}
}

// TestBuildModuleUnresolvedLocal covers the UnresolvedLocal failure mode
// (spec.md §4.1 "Failure mode"): referencing a symbol never bound by a Let
// or Param is a structural error, not a panic.
func TestBuildModuleUnresolvedLocal(t *testing.T) {
	interner := newTestInterner()
	intTy := interner.Builtins().Int

	fn := ast.Function{
		Path:       1,
		ReturnType: intTy,
		Exprs: []ast.Expr{
			{ID: 0, Kind: ast.ExprIdent, Type: intTy, Ident: 99},
		},
		Body: []ast.Stmt{
			{Kind: ast.StmtReturn, Expr: 0},
		},
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	_, err := BuildModule(&mod, nil, interner)
	if err == nil {
		t.Fatalf("expected an UnresolvedLocal error")
	}
	if err.Kind != ErrUnresolvedLocal {
		t.Fatalf("expected ErrUnresolvedLocal, got %v", err.Kind)
	}
}

// TestBuildModuleRPNArithmetic covers spec.md §4.1 rule 2: a flattened RPN
// run replays onto an operand stack to build a BinOp tree.
func TestBuildModuleRPNArithmetic(t *testing.T) {
	interner := newTestInterner()
	intTy := interner.Builtins().Int

	fn := ast.Function{
		Path:       1,
		ReturnType: intTy,
		Exprs: []ast.Expr{
			{ID: 0, Kind: ast.ExprInt, Type: intTy, IntVal: 1},
			{ID: 1, Kind: ast.ExprInt, Type: intTy, IntVal: 2},
			{
				ID:   2,
				Kind: ast.ExprRPNSeq,
				Type: intTy,
				RPN: []ast.RPNToken{
					{Kind: ast.RPNPushOperand, Operand: 0},
					{Kind: ast.RPNPushOperand, Operand: 1},
					{Kind: ast.RPNApplyOp, Op: ast.RPNAdd},
				},
			},
		},
		Body: []ast.Stmt{
			{Kind: ast.StmtReturn, Expr: 2},
		},
	}
	mod := ast.Module{Functions: []ast.Function{fn}, Start: fn.Path}

	hmod, err := BuildModule(&mod, nil, interner)
	if err != nil {
		t.Fatalf("BuildModule failed: %v", err)
	}
	hfn := &hmod.Functions[0]
	assertWellFormed(t, hfn)

	retExpr := hfn.Blocks[0].ExprByID(hfn.Blocks[0].Terminator.ReturnExpr)
	if retExpr == nil || retExpr.Kind != ExprBinOp || retExpr.BinOp != BinAdd {
		t.Fatalf("expected a BinAdd node, got %+v", retExpr)
	}
}
