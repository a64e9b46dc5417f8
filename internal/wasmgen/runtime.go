package wasmgen

import "bytes"

// allocBody returns the function body (locals decl + code + end) for
// __bst_alloc(size: i32) -> i32, a bump allocator against the __heap_ptr
// global (spec.md §4.4 rule 3). There is no free list: __bst_free is a
// no-op (freeBody below) — matching the Non-goal that excludes a
// real collector from this backend.
//
//	local 1 = size aligned up to 2 bytes
//	local 2 = result (the heap pointer before bumping)
func allocBody() []byte {
	return withSizePrefix(func(buf *bytes.Buffer) {
		putULEB128(buf, 1) // one locals group
		putULEB128(buf, 2) // two locals
		buf.WriteByte(0x7F) // i32

		buf.WriteByte(0x20) // local.get
		putULEB128(buf, 0)  // param 0: size
		buf.WriteByte(0x41) // i32.const
		putSLEB128(buf, 1)
		buf.WriteByte(0x6A) // i32.add
		buf.WriteByte(0x41) // i32.const
		putSLEB128(buf, -2) // ~1, clears the low alignment bit
		buf.WriteByte(0x71) // i32.and
		buf.WriteByte(0x21) // local.set
		putULEB128(buf, 1)  // aligned

		buf.WriteByte(0x23) // global.get
		putULEB128(buf, 0)  // __heap_ptr
		buf.WriteByte(0x21) // local.set
		putULEB128(buf, 2)  // result

		buf.WriteByte(0x23) // global.get
		putULEB128(buf, 0)
		buf.WriteByte(0x20) // local.get
		putULEB128(buf, 1)  // aligned
		buf.WriteByte(0x6A) // i32.add
		buf.WriteByte(0x24) // global.set
		putULEB128(buf, 0)

		buf.WriteByte(0x20) // local.get
		putULEB128(buf, 2)  // result
		buf.WriteByte(0x0B) // end
	})
}

// freeBody returns the function body for __bst_free(ptr: i32), a deliberate
// no-op: spec.md's bump allocator never reclaims memory mid-run, so every
// conditional-drop site still calls this for symmetry with a future real
// collector, but nothing here actually runs.
func freeBody() []byte {
	return withSizePrefix(func(buf *bytes.Buffer) {
		putULEB128(buf, 0) // no locals
		buf.WriteByte(0x0B)
	})
}
