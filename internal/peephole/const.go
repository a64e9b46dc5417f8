package peephole

import "github.com/nyejames/beanstalk-sub005/internal/lir"

// constKind classifies a value-producing const instruction by its WASM
// value type, independent of lir.ValType so this package doesn't need to
// import the lowerer's local-allocation machinery.
type constKind uint8

const (
	notConst constKind = iota
	constI32
	constI64
	constF32
	constF64
)

func classify(i lir.Instr) constKind {
	switch i.Op {
	case lir.OpI32Const:
		return constI32
	case lir.OpI64Const:
		return constI64
	case lir.OpF32Const:
		return constF32
	case lir.OpF64Const:
		return constF64
	default:
		return notConst
	}
}

func isZero(i lir.Instr, k constKind) bool {
	switch k {
	case constI32:
		return i.I32 == 0
	case constI64:
		return i.I64 == 0
	case constF32:
		return i.F32 == 0
	case constF64:
		return i.F64 == 0
	}
	return false
}

func isOne(i lir.Instr, k constKind) bool {
	switch k {
	case constI32:
		return i.I32 == 1
	case constI64:
		return i.I64 == 1
	case constF32:
		return i.F32 == 1
	case constF64:
		return i.F64 == 1
	}
	return false
}

// addOpFor/subOpFor/mulOpFor/divOpFor report the binary opcode for a given
// const kind, used to recognize the operator half of fold/identity windows.
func addOpFor(k constKind) lir.Op {
	switch k {
	case constI64:
		return lir.OpI64Add
	case constF32:
		return lir.OpF32Add
	case constF64:
		return lir.OpF64Add
	default:
		return lir.OpI32Add
	}
}

func subOpFor(k constKind) lir.Op {
	switch k {
	case constI64:
		return lir.OpI64Sub
	case constF32:
		return lir.OpF32Sub
	case constF64:
		return lir.OpF64Sub
	default:
		return lir.OpI32Sub
	}
}

func mulOpFor(k constKind) lir.Op {
	switch k {
	case constI64:
		return lir.OpI64Mul
	case constF32:
		return lir.OpF32Mul
	case constF64:
		return lir.OpF64Mul
	default:
		return lir.OpI32Mul
	}
}

func divOpFor(k constKind) lir.Op {
	switch k {
	case constI64:
		return lir.OpI64DivS
	case constF32:
		return lir.OpF32Div
	case constF64:
		return lir.OpF64Div
	default:
		return lir.OpI32DivS
	}
}

func constInstr(k constKind, i32 int32, i64 int64, f32 float32, f64 float64) lir.Instr {
	switch k {
	case constI64:
		return lir.Instr{Op: lir.OpI64Const, I64: i64}
	case constF32:
		return lir.Instr{Op: lir.OpF32Const, F32: f32}
	case constF64:
		return lir.Instr{Op: lir.OpF64Const, F64: f64}
	default:
		return lir.Instr{Op: lir.OpI32Const, I32: i32}
	}
}
