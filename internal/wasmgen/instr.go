package wasmgen

import (
	"bytes"

	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

// encodeInstr translates one LIR instruction to its WASM byte encoding,
// expanding the four symbolic opcodes (OpI32ConstStringRef, OpCall,
// OpCondDrop, OpAlloc) using the module-wide layout resolved before any function
// body is encoded.
func (e *funcEncoder) encodeInstr(buf *bytes.Buffer, instr lir.Instr) *Error {
	switch instr.Op {
	case lir.OpI32Const:
		buf.WriteByte(0x41)
		putSLEB128(buf, int64(instr.I32))
	case lir.OpI64Const:
		buf.WriteByte(0x42)
		putSLEB128(buf, instr.I64)
	case lir.OpF32Const:
		buf.WriteByte(0x43)
		putFloat32(buf, instr.F32)
	case lir.OpF64Const:
		buf.WriteByte(0x44)
		putFloat64(buf, instr.F64)
	case lir.OpI32ConstStringRef:
		off, ok := e.l.stringOffset[instr.StringLit]
		if !ok {
			return errf("unresolved string literal reference %q", instr.StringLit)
		}
		buf.WriteByte(0x41)
		putSLEB128(buf, int64(off))

	case lir.OpAlloc:
		buf.WriteByte(0x41)
		putSLEB128(buf, int64(instr.AllocSize))
		buf.WriteByte(0x10) // call
		putULEB128(buf, uint64(e.l.allocFuncIdx))

	case lir.OpLocalGet:
		buf.WriteByte(0x20)
		putULEB128(buf, uint64(instr.Local))
	case lir.OpLocalSet:
		buf.WriteByte(0x21)
		putULEB128(buf, uint64(instr.Local))
	case lir.OpLocalTee:
		buf.WriteByte(0x22)
		putULEB128(buf, uint64(instr.Local))
	case lir.OpGlobalGet:
		buf.WriteByte(0x23)
		putULEB128(buf, uint64(instr.Global))
	case lir.OpGlobalSet:
		buf.WriteByte(0x24)
		putULEB128(buf, uint64(instr.Global))

	case lir.OpI32Add:
		buf.WriteByte(0x6A)
	case lir.OpI32Sub:
		buf.WriteByte(0x6B)
	case lir.OpI32Mul:
		buf.WriteByte(0x6C)
	case lir.OpI32DivS:
		buf.WriteByte(0x6D)
	case lir.OpI32RemS:
		buf.WriteByte(0x6F)
	case lir.OpI32And:
		buf.WriteByte(0x71)
	case lir.OpI32Or:
		buf.WriteByte(0x72)
	case lir.OpI32Xor:
		buf.WriteByte(0x73)
	case lir.OpI32Eq:
		buf.WriteByte(0x46)
	case lir.OpI32Ne:
		buf.WriteByte(0x47)
	case lir.OpI32LtS:
		buf.WriteByte(0x48)
	case lir.OpI32GtS:
		buf.WriteByte(0x4A)
	case lir.OpI32LeS:
		buf.WriteByte(0x4C)
	case lir.OpI32GeS:
		buf.WriteByte(0x4E)
	case lir.OpI32Eqz:
		buf.WriteByte(0x45)

	case lir.OpI64Add:
		buf.WriteByte(0x7C)
	case lir.OpI64Sub:
		buf.WriteByte(0x7D)
	case lir.OpI64Mul:
		buf.WriteByte(0x7E)
	case lir.OpI64DivS:
		buf.WriteByte(0x7F)
	case lir.OpI64RemS:
		buf.WriteByte(0x81)
	case lir.OpI64Eq:
		buf.WriteByte(0x51)
	case lir.OpI64Ne:
		buf.WriteByte(0x52)
	case lir.OpI64LtS:
		buf.WriteByte(0x53)
	case lir.OpI64GtS:
		buf.WriteByte(0x55)
	case lir.OpI64LeS:
		buf.WriteByte(0x57)
	case lir.OpI64GeS:
		buf.WriteByte(0x59)

	case lir.OpF32Add:
		buf.WriteByte(0x92)
	case lir.OpF32Sub:
		buf.WriteByte(0x93)
	case lir.OpF32Mul:
		buf.WriteByte(0x94)
	case lir.OpF32Div:
		buf.WriteByte(0x95)

	case lir.OpF64Add:
		buf.WriteByte(0xA0)
	case lir.OpF64Sub:
		buf.WriteByte(0xA1)
	case lir.OpF64Mul:
		buf.WriteByte(0xA2)
	case lir.OpF64Div:
		buf.WriteByte(0xA3)
	case lir.OpF64Eq:
		buf.WriteByte(0x61)
	case lir.OpF64Ne:
		buf.WriteByte(0x62)
	case lir.OpF64Lt:
		buf.WriteByte(0x63)
	case lir.OpF64Gt:
		buf.WriteByte(0x64)
	case lir.OpF64Le:
		buf.WriteByte(0x65)
	case lir.OpF64Ge:
		buf.WriteByte(0x66)

	case lir.OpDrop:
		buf.WriteByte(0x1A)

	case lir.OpCall:
		idx, ok := e.l.resolveCall(instr)
		if !ok {
			return errf("unresolved call target (host=%v path=%d func=%d)", instr.CallIsHost, instr.CallPath, instr.CallFunc)
		}
		buf.WriteByte(0x10)
		putULEB128(buf, uint64(idx))
	case lir.OpCallIndirect:
		return errf("call_indirect is not used by this backend's call lowering")

	case lir.OpCondDrop:
		e.encodeCondDrop(buf, instr)

	case lir.OpBr:
		e.jumpTo(buf, instr.Block)
	case lir.OpBrIf:
		buf.WriteByte(0x04) // if
		buf.WriteByte(0x40)
		e.push("if")
		e.jumpTo(buf, instr.Block)
		e.pop()
		buf.WriteByte(0x0B) // end
	case lir.OpReturn:
		buf.WriteByte(0x0F)
	case lir.OpUnreachable:
		buf.WriteByte(0x00)

	case lir.OpI32Load:
		buf.WriteByte(0x28)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpI32Store:
		buf.WriteByte(0x36)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpI64Load:
		buf.WriteByte(0x29)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpI64Store:
		buf.WriteByte(0x37)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpF32Load:
		buf.WriteByte(0x2A)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpF32Store:
		buf.WriteByte(0x38)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpF64Load:
		buf.WriteByte(0x2B)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))
	case lir.OpF64Store:
		buf.WriteByte(0x39)
		putULEB128(buf, uint64(instr.Align))
		putULEB128(buf, uint64(instr.Offset))

	case lir.OpLabel:
		// Consumed by splitBlocks; never reaches per-block translation.
	default:
		return errf("unhandled LIR opcode %d", instr.Op)
	}
	return nil
}

// encodeCondDrop expands spec.md §4.4 rule 5's conditional-drop sequence:
// test the ownership tag bit, and if set, call __bst_free on the
// untagged address.
func (e *funcEncoder) encodeCondDrop(buf *bytes.Buffer, instr lir.Instr) {
	buf.WriteByte(0x20) // local.get
	putULEB128(buf, uint64(instr.Local))
	buf.WriteByte(0x41) // i32.const 1
	putSLEB128(buf, 1)
	buf.WriteByte(0x71) // i32.and
	buf.WriteByte(0x04) // if
	buf.WriteByte(0x40)
	buf.WriteByte(0x20) // local.get
	putULEB128(buf, uint64(instr.Local))
	buf.WriteByte(0x41) // i32.const -2 (~1)
	putSLEB128(buf, -2)
	buf.WriteByte(0x71) // i32.and
	buf.WriteByte(0x10) // call
	putULEB128(buf, uint64(e.l.freeFuncIdx))
	buf.WriteByte(0x0B) // end
}

func putFloat32(buf *bytes.Buffer, v float32) {
	bits := float32bits(v)
	buf.WriteByte(byte(bits))
	buf.WriteByte(byte(bits >> 8))
	buf.WriteByte(byte(bits >> 16))
	buf.WriteByte(byte(bits >> 24))
}

func putFloat64(buf *bytes.Buffer, v float64) {
	bits := float64bits(v)
	for i := 0; i < 8; i++ {
		buf.WriteByte(byte(bits >> (8 * uint(i))))
	}
}
