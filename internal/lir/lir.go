// Package lir implements the Low-level IR node model (C3 of spec.md §3): a
// typed stack machine mirroring WASM, one linear instruction stream per
// function. Grounded on the teacher's internal/backend/llvm emitter, which
// walks a *mir.Func's blocks and instructions in the same per-function,
// per-block order this package's lowerer does, generalized from emitting
// text directly to emitting a typed []Instr stream of its own.
package lir

import "github.com/nyejames/beanstalk-sub005/internal/ids"

// ValType enumerates the WASM value types this core emits (spec.md §3 "LIR
// module"). There is no reference/GC/SIMD type: the Non-goals exclude them.
type ValType uint8

const (
	I32 ValType = iota
	I64
	F32
	F64
)

// Op enumerates LIR instruction opcodes. Control flow is represented with
// explicit block Labels and Br/BrIf rather than WASM's nested block/loop
// syntax directly — internal/wasmgen materializes the final structured
// `block`/`loop`/`br_table` form from this flat label stream at emission
// time (see DESIGN.md: this sidesteps reducibility analysis for WASM, which
// spec.md §4.4 does not require the way §4.7 requires it for JS).
type Op uint8

const (
	OpI32Const Op = iota
	OpI64Const
	OpF32Const
	OpF64Const
	// OpI32ConstStringRef pushes the i32 address of an interned string
	// literal. The literal's byte offset in the static-data section is not
	// known until internal/wasmgen lays out memory, so LIR carries the
	// string payload symbolically and wasmgen resolves it to a real
	// OpI32Const-equivalent value at emission time.
	OpI32ConstStringRef
	OpAlloc // calls __bst_alloc(size) and pushes the resulting i32 pointer

	OpLocalGet
	OpLocalSet
	OpLocalTee
	OpGlobalGet
	OpGlobalSet

	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivS
	OpI32RemS
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Eq
	OpI32Ne
	OpI32LtS
	OpI32LeS
	OpI32GtS
	OpI32GeS
	OpI32Eqz

	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64RemS
	OpI64Eq
	OpI64Ne
	OpI64LtS
	OpI64LeS
	OpI64GtS
	OpI64GeS

	OpF32Add
	OpF32Sub
	OpF32Mul
	OpF32Div

	OpF64Add
	OpF64Sub
	OpF64Mul
	OpF64Div
	OpF64Eq
	OpF64Ne
	OpF64Lt
	OpF64Le
	OpF64Gt
	OpF64Ge

	OpDrop
	OpCall
	OpCallIndirect

	// OpCondDrop expands, at emission time, to spec.md §4.4 rule 5's
	// conditional-drop sequence for the local it names: test the ownership
	// bit, and if set, call __bst_free on the untagged address. Carried as
	// one opcode rather than inline Label/Br so the lowerer doesn't need to
	// synthesize CFG-shaped labels purely for drop bookkeeping.
	OpCondDrop

	OpLabel
	OpBr
	OpBrIf
	OpReturn
	OpUnreachable

	OpI32Load
	OpI32Store
	OpI64Load
	OpI64Store
	OpF32Load
	OpF32Store
	OpF64Load
	OpF64Store
)

// Instr is one LIR instruction. Only the fields relevant to Op are valid.
type Instr struct {
	Op Op

	I32 int32
	I64 int64
	F32 float32
	F64 float64

	Local  ids.LocalId
	Global ids.GlobalId

	FuncIndex uint32 // OpCallIndirect

	// OpCall: the callee is carried symbolically, the same way
	// OpI32ConstStringRef carries its literal — internal/wasmgen resolves the
	// final function-index space (imports first, then user functions) once
	// the whole module's import list is known.
	CallPath   ids.InternedPath
	CallFunc   ids.FunctionId // valid when !CallIsHost
	CallIsHost bool

	Block ids.BlockId // OpLabel, OpBr, OpBrIf

	Offset uint32 // OpI32Load/Store family
	Align  uint32

	StringLit string // OpI32ConstStringRef
	AllocSize int32  // OpAlloc: byte size (already 2-byte aligned)
}

// Local is one WASM local slot: parameters first, then synthesized locals
// grouped by type (spec.md §4.4 rule 1).
type Local struct {
	Type     ValType
	HeapOwned bool // true if this local holds a tagged heap pointer (drop candidate)
}

// Func is one lowered LIR function.
type Func struct {
	ID          ids.FunctionId
	Path        ids.InternedPath
	EntryBlock  ids.BlockId // first OpLabel executed; wasmgen's dispatch loop starts here
	ParamTypes  []ValType
	ReturnTypes []ValType
	Locals      []Local // includes parameters at indices [0, len(ParamTypes))
	Body        []Instr
}

// Module is the root LIR container for one compilation unit.
type Module struct {
	Functions []Func
	StartFunc ids.FunctionId
}
