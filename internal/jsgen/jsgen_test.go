package jsgen

import (
	"strings"
	"testing"

	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// TestEmitFuncStructuredNoDispatcher covers spec.md S1: a 4-block if/else
// that joins back to a shared return should emit a direct `if` with no
// block dispatcher.
func TestEmitFuncStructuredNoDispatcher(t *testing.T) {
	fn := &hir.Func{
		Entry: 0,
		Blocks: []hir.Block{
			{
				ID:         0,
				Exprs:      []hir.Expr{{ID: 0, Kind: hir.ExprBool, BoolVal: true}},
				Terminator: hir.Terminator{Kind: hir.TermIf, IfCond: 0, IfThen: 1, IfElse: 2},
			},
			{
				ID:    1,
				Exprs: []hir.Expr{{ID: 0, Kind: hir.ExprInt, IntVal: 2}},
				Statements: []hir.Stmt{
					{Kind: hir.StmtAssign, AssignPlace: place.Local(0, ids.NoTypeId), AssignExpr: 0},
				},
				Terminator: hir.Terminator{Kind: hir.TermJump, JumpTarget: 3},
			},
			{
				ID:    2,
				Exprs: []hir.Expr{{ID: 0, Kind: hir.ExprInt, IntVal: 3}},
				Statements: []hir.Stmt{
					{Kind: hir.StmtAssign, AssignPlace: place.Local(0, ids.NoTypeId), AssignExpr: 0},
				},
				Terminator: hir.Terminator{Kind: hir.TermJump, JumpTarget: 3},
			},
			{
				ID:         3,
				Terminator: hir.Terminator{Kind: hir.TermReturn, ReturnExpr: hir.NoExprID},
			},
		},
	}

	art, err := EmitFunc(fn, hostreg.NewRegistry(), nil, "main", Config{Pretty: true})
	if err != nil {
		t.Fatalf("EmitFunc failed: %v", err)
	}
	if !strings.Contains(art.Source, "if (true)") {
		t.Fatalf("expected direct if, got:\n%s", art.Source)
	}
	if strings.Contains(art.Source, "switch (__bb") {
		t.Fatalf("expected no block dispatcher, got:\n%s", art.Source)
	}
}

// TestEmitFuncDispatchForLoop covers spec.md S2: a loop built from Continue
// and Break terminators must fall back to the switch(__bb) dispatcher, with
// exactly one assignment to each loop-control target.
func TestEmitFuncDispatchForLoop(t *testing.T) {
	fn := &hir.Func{
		Entry: 0,
		Blocks: []hir.Block{
			{
				ID:         0,
				Exprs:      []hir.Expr{{ID: 0, Kind: hir.ExprBool, BoolVal: true}},
				Terminator: hir.Terminator{Kind: hir.TermIf, IfCond: 0, IfThen: 1, IfElse: 2},
			},
			{
				ID:         1,
				Terminator: hir.Terminator{Kind: hir.TermContinue, LoopTarget: 3},
			},
			{
				ID:         2,
				Terminator: hir.Terminator{Kind: hir.TermBreak, LoopTarget: 4},
			},
			{
				ID:         3,
				Terminator: hir.Terminator{Kind: hir.TermJump, JumpTarget: 0},
			},
			{
				ID:         4,
				Terminator: hir.Terminator{Kind: hir.TermReturn, ReturnExpr: hir.NoExprID},
			},
		},
	}

	art, err := EmitFunc(fn, hostreg.NewRegistry(), nil, "looper", Config{Pretty: true})
	if err != nil {
		t.Fatalf("EmitFunc failed: %v", err)
	}
	if !strings.Contains(art.Source, "switch (__bb") {
		t.Fatalf("expected block dispatcher, got:\n%s", art.Source)
	}
	if n := strings.Count(art.Source, "__bb = 3"); n != 1 {
		t.Fatalf("expected exactly one '__bb = 3' assignment, got %d in:\n%s", n, art.Source)
	}
	if n := strings.Count(art.Source, "__bb = 4"); n != 1 {
		t.Fatalf("expected exactly one '__bb = 4' assignment, got %d in:\n%s", n, art.Source)
	}
}

// TestEmitFuncHostIO covers spec.md S3: a call to the host function "io"
// lowers to console.log (via the __log runtime helper prelude).
func TestEmitFuncHostIO(t *testing.T) {
	const ioPath ids.InternedPath = 7

	fn := &hir.Func{
		Entry: 0,
		Blocks: []hir.Block{
			{
				ID:    0,
				Exprs: []hir.Expr{{ID: 0, Kind: hir.ExprStringLiteral, StringVal: "hello"}},
				Statements: []hir.Stmt{
					{
						Kind:       hir.StmtCall,
						CallTarget: hir.CallTarget{Kind: hir.CallHostFunction, Path: ioPath},
						CallArgs:   []hir.ExprID{0},
						CallResult: ids.NoLocalId,
					},
				},
				Terminator: hir.Terminator{Kind: hir.TermReturn, ReturnExpr: hir.NoExprID},
			},
		},
	}

	pathNames := map[ids.InternedPath]string{ioPath: "io"}
	art, err := EmitFunc(fn, hostreg.NewRegistry(), pathNames, "main", Config{})
	if err != nil {
		t.Fatalf("EmitFunc failed: %v", err)
	}
	if !strings.Contains(art.Source, "console.log") {
		t.Fatalf("expected console.log in output, got:\n%s", art.Source)
	}
}

// TestEmitFuncRejectsOptionConstruct confirms OptionConstruct is a hard
// error in this backend (spec.md §4.7 rule 5).
func TestEmitFuncRejectsOptionConstruct(t *testing.T) {
	fn := &hir.Func{
		Entry: 0,
		Blocks: []hir.Block{
			{
				ID:    0,
				Exprs: []hir.Expr{{ID: 0, Kind: hir.ExprOptionConstruct, OptionSome: false}},
				Statements: []hir.Stmt{
					{Kind: hir.StmtExpr, Expr: 0},
				},
				Terminator: hir.Terminator{Kind: hir.TermReturn, ReturnExpr: hir.NoExprID},
			},
		},
	}

	if _, err := EmitFunc(fn, hostreg.NewRegistry(), nil, "main", Config{}); err == nil {
		t.Fatalf("expected OptionConstruct to be rejected")
	}
}
