package lir

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// localIDFromIndex adapts a lowerer-assigned local slot index to the
// ids.LocalId type Instr.Local carries. Instr only needs a stable numeric
// tag for the WASM local-index space, so this is a plain conversion.
func localIDFromIndex(idx int) ids.LocalId { return ids.LocalId(idx) }

func alignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

func loadOpFor(vt ValType) Op {
	switch vt {
	case I64:
		return OpI64Load
	case F32:
		return OpF32Load
	case F64:
		return OpF64Load
	default:
		return OpI32Load
	}
}

func storeOpFor(vt ValType) Op {
	switch vt {
	case I64:
		return OpI64Store
	case F32:
		return OpF32Store
	case F64:
		return OpF64Store
	default:
		return OpI32Store
	}
}

// binOpInstr maps a HIR binary operator plus its operand's value type to a
// concrete typed LIR opcode (spec.md §4.4 rule 2's RPN operand stack is
// already flattened by HIR; this is the final type-directed opcode pick).
func binOpInstr(op hir.BinOp, vt ValType) (Op, bool) {
	switch vt {
	case I64:
		switch op {
		case hir.BinAdd:
			return OpI64Add, true
		case hir.BinSub:
			return OpI64Sub, true
		case hir.BinMul:
			return OpI64Mul, true
		case hir.BinDiv:
			return OpI64DivS, true
		case hir.BinMod:
			return OpI64RemS, true
		case hir.BinEq:
			return OpI64Eq, true
		case hir.BinNeq:
			return OpI64Ne, true
		case hir.BinLt:
			return OpI64LtS, true
		case hir.BinLe:
			return OpI64LeS, true
		case hir.BinGt:
			return OpI64GtS, true
		case hir.BinGe:
			return OpI64GeS, true
		}
	case F64:
		switch op {
		case hir.BinAdd:
			return OpF64Add, true
		case hir.BinSub:
			return OpF64Sub, true
		case hir.BinMul:
			return OpF64Mul, true
		case hir.BinDiv:
			return OpF64Div, true
		case hir.BinEq:
			return OpF64Eq, true
		case hir.BinNeq:
			return OpF64Ne, true
		case hir.BinLt:
			return OpF64Lt, true
		case hir.BinLe:
			return OpF64Le, true
		case hir.BinGt:
			return OpF64Gt, true
		case hir.BinGe:
			return OpF64Ge, true
		}
	default: // I32: bool/char comparisons and logical ops
		switch op {
		case hir.BinAdd:
			return OpI32Add, true
		case hir.BinSub:
			return OpI32Sub, true
		case hir.BinMul:
			return OpI32Mul, true
		case hir.BinDiv:
			return OpI32DivS, true
		case hir.BinMod:
			return OpI32RemS, true
		case hir.BinEq:
			return OpI32Eq, true
		case hir.BinNeq:
			return OpI32Ne, true
		case hir.BinLt:
			return OpI32LtS, true
		case hir.BinLe:
			return OpI32LeS, true
		case hir.BinGt:
			return OpI32GtS, true
		case hir.BinGe:
			return OpI32GeS, true
		case hir.BinAnd:
			return OpI32And, true
		case hir.BinOr:
			return OpI32Or, true
		}
	}
	return 0, false
}

// resultTypeOf reports the value type a binary operator leaves on the stack.
// Comparisons always collapse to i32 regardless of operand width.
func resultTypeOf(op hir.BinOp, operandType ValType) ValType {
	switch op {
	case hir.BinEq, hir.BinNeq, hir.BinLt, hir.BinLe, hir.BinGt, hir.BinGe, hir.BinAnd, hir.BinOr:
		return I32
	default:
		return operandType
	}
}
