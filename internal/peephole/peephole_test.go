package peephole

import (
	"testing"

	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

func TestOptimizeFoldsConstantAdd(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpI32Const, I32: 2},
		{Op: lir.OpI32Const, I32: 3},
		{Op: lir.OpI32Add},
		{Op: lir.OpLocalSet, Local: 0},
	}}
	stats := Optimize(fn)
	if stats.ConstantsFolded < 1 {
		t.Fatalf("expected at least one constant fold, got %+v", stats)
	}
	want := []lir.Instr{
		{Op: lir.OpI32Const, I32: 5},
		{Op: lir.OpLocalSet, Local: 0},
	}
	assertEqualBody(t, fn.Body, want)
}

func TestOptimizeRemovesAddZeroIdentity(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpLocalGet, Local: 1},
		{Op: lir.OpI32Const, I32: 0},
		{Op: lir.OpI32Add},
	}}
	stats := Optimize(fn)
	if stats.IdentitiesRemoved < 1 {
		t.Fatalf("expected an identity removal, got %+v", stats)
	}
	want := []lir.Instr{{Op: lir.OpLocalGet, Local: 1}}
	assertEqualBody(t, fn.Body, want)
}

func TestOptimizeCollapsesSetThenGetToTee(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpI32Const, I32: 7},
		{Op: lir.OpLocalSet, Local: 2},
		{Op: lir.OpLocalGet, Local: 2},
	}}
	stats := Optimize(fn)
	if stats.PeepholesApplied < 1 {
		t.Fatalf("expected a peephole rewrite, got %+v", stats)
	}
	want := []lir.Instr{
		{Op: lir.OpI32Const, I32: 7},
		{Op: lir.OpLocalTee, Local: 2},
	}
	assertEqualBody(t, fn.Body, want)
}

func TestOptimizeErasesConstThenDrop(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpI64Const, I64: 99},
		{Op: lir.OpDrop},
		{Op: lir.OpLocalGet, Local: 0},
	}}
	Optimize(fn)
	want := []lir.Instr{{Op: lir.OpLocalGet, Local: 0}}
	assertEqualBody(t, fn.Body, want)
}

func TestOptimizeLeavesDivisionByZeroUnfolded(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpI32Const, I32: 10},
		{Op: lir.OpI32Const, I32: 0},
		{Op: lir.OpI32DivS},
	}}
	stats := Optimize(fn)
	if stats.ConstantsFolded != 0 {
		t.Fatalf("division by zero must not fold, got %+v", stats)
	}
	if len(fn.Body) != 3 {
		t.Fatalf("expected division-by-zero window untouched, got %+v", fn.Body)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	fn := &lir.Func{Body: []lir.Instr{
		{Op: lir.OpI32Const, I32: 4},
		{Op: lir.OpI32Const, I32: 6},
		{Op: lir.OpI32Mul},
	}}
	Optimize(fn)
	first := append([]lir.Instr(nil), fn.Body...)
	Optimize(fn)
	assertEqualBody(t, fn.Body, first)
}

func assertEqualBody(t *testing.T, got, want []lir.Instr) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("body length = %d, want %d (%+v vs %+v)", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("instr %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
