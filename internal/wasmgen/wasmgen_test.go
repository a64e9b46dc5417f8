package wasmgen

import (
	"bytes"
	"context"
	"testing"

	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

// TestEmitModuleSimpleRoundTrip covers spec.md S7: a single function
// `simple() -> i32 { return 42 }` exported as "simple" parses under a
// conforming validator and its exports list "simple" at index 0 plus
// "memory".
func TestEmitModuleSimpleRoundTrip(t *testing.T) {
	fn := lir.Func{
		ID:          1,
		EntryBlock:  0,
		ReturnTypes: []lir.ValType{lir.I32},
		Body: []lir.Instr{
			{Op: lir.OpLabel, Block: 0},
			{Op: lir.OpI32Const, I32: 42},
			{Op: lir.OpReturn},
		},
	}
	m := &lir.Module{Functions: []lir.Func{fn}, StartFunc: 1}
	names := map[ids.FunctionId]string{1: "simple"}

	art, err := EmitModule(m, hostreg.NewRegistry(), names, nil)
	if err != nil {
		t.Fatalf("EmitModule failed: %v", err)
	}
	if len(art.Bytes) == 0 {
		t.Fatalf("expected non-empty module bytes")
	}
	if !bytes.Equal(art.Bytes[:4], wasmMagic) {
		t.Fatalf("missing wasm magic, got %x", art.Bytes[:4])
	}
	if art.MemoryExportName != "memory" {
		t.Fatalf("expected memory export name 'memory', got %q", art.MemoryExportName)
	}
	if name := art.FunctionNameByID[1]; name != "simple" {
		t.Fatalf("expected function 1 named 'simple', got %q", name)
	}

	if verr := Validate(context.Background(), art.Bytes); verr != nil {
		t.Fatalf("module failed validation: %v", verr)
	}
}

// TestEmitModuleBranchingFunction exercises the dispatch-loop control-flow
// structuring on a function with more than one basic block: an if/else
// returning one of two constants.
func TestEmitModuleBranchingFunction(t *testing.T) {
	fn := lir.Func{
		ID:          1,
		EntryBlock:  0,
		ParamTypes:  []lir.ValType{lir.I32},
		ReturnTypes: []lir.ValType{lir.I32},
		Locals:      []lir.Local{{Type: lir.I32}},
		Body: []lir.Instr{
			{Op: lir.OpLabel, Block: 0},
			{Op: lir.OpLocalGet, Local: 0},
			{Op: lir.OpBrIf, Block: 1},
			{Op: lir.OpBr, Block: 2},

			{Op: lir.OpLabel, Block: 1},
			{Op: lir.OpI32Const, I32: 1},
			{Op: lir.OpReturn},

			{Op: lir.OpLabel, Block: 2},
			{Op: lir.OpI32Const, I32: 0},
			{Op: lir.OpReturn},
		},
	}
	m := &lir.Module{Functions: []lir.Func{fn}, StartFunc: 1}
	names := map[ids.FunctionId]string{1: "choose"}

	art, err := EmitModule(m, hostreg.NewRegistry(), names, nil)
	if err != nil {
		t.Fatalf("EmitModule failed: %v", err)
	}
	if verr := Validate(context.Background(), art.Bytes); verr != nil {
		t.Fatalf("module failed validation: %v", verr)
	}
}

// TestEmitModuleRejectsUnresolvedCall confirms structuralCheck catches a
// call to a function id that was never part of the module, rather than
// letting an invalid function index reach the binary.
func TestEmitModuleRejectsUnresolvedCall(t *testing.T) {
	fn := lir.Func{
		ID:         1,
		EntryBlock: 0,
		Body: []lir.Instr{
			{Op: lir.OpLabel, Block: 0},
			{Op: lir.OpCall, CallFunc: 99, CallIsHost: false},
			{Op: lir.OpReturn},
		},
	}
	m := &lir.Module{Functions: []lir.Func{fn}, StartFunc: 1}

	if _, err := EmitModule(m, hostreg.NewRegistry(), nil, nil); err == nil {
		t.Fatalf("expected an unresolved-call error")
	}
}

// TestEmitModuleHostImportPrecedesUserFunctions confirms host imports
// occupy the low end of the function-index space (spec.md §4.6).
func TestEmitModuleHostImportPrecedesUserFunctions(t *testing.T) {
	reg := hostreg.NewRegistry()
	reg.Register(hostreg.Import{Module: "env", Name: "log", Params: []hostreg.ValueType{hostreg.I32}})

	fn := lir.Func{
		ID:         1,
		EntryBlock: 0,
		Body: []lir.Instr{
			{Op: lir.OpLabel, Block: 0},
			{Op: lir.OpI32Const, I32: 7},
			{Op: lir.OpCall, CallPath: 10, CallIsHost: true},
			{Op: lir.OpReturn},
		},
	}
	m := &lir.Module{Functions: []lir.Func{fn}, StartFunc: 1}
	pathNames := map[ids.InternedPath]string{10: "log"}

	art, err := EmitModule(m, reg, map[ids.FunctionId]string{1: "run"}, pathNames)
	if err != nil {
		t.Fatalf("EmitModule failed: %v", err)
	}
	if verr := Validate(context.Background(), art.Bytes); verr != nil {
		t.Fatalf("module failed validation: %v", verr)
	}
	if !bytes.Contains(art.Bytes, []byte{0x41, 0x07, 0x10, 0x00}) {
		t.Fatalf("expected the host call to target function index 0")
	}
}
