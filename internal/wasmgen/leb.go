// Package wasmgen implements the WASM binary emitter (C9 of spec.md §4.6):
// turning one LIR module, a host import registry and the ownership runtime
// into a byte-for-byte valid WebAssembly 1.0 (MVP) module. There is no
// teacher or pack precedent for binary module construction (the teacher's
// own backend, internal/backend/llvm, emits textual LLVM IR via
// strings.Builder rather than a binary container format) — the section/
// LEB128 encoding here is therefore built directly against the WASM core
// specification on the standard library (bytes.Buffer, math.Float32bits/Float64bits),
// the same way the teacher's llvm emitter leans on strings.Builder for its
// own text format with no third-party templating engine. Module
// *validation*, in contrast, does have a pack precedent to follow: see
// validate.go for tetratelabs/wazero.
package wasmgen

import "bytes"

func putULEB128(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func putSLEB128(buf *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

func putName(buf *bytes.Buffer, s string) {
	putULEB128(buf, uint64(len(s)))
	buf.WriteString(s)
}

// withSizePrefix renders body via fn into a LEB128-length-prefixed blob, the
// shape every WASM section and every function body needs.
func withSizePrefix(fn func(*bytes.Buffer)) []byte {
	var inner bytes.Buffer
	fn(&inner)
	var out bytes.Buffer
	putULEB128(&out, uint64(inner.Len()))
	out.Write(inner.Bytes())
	return out.Bytes()
}

func section(id byte, body []byte) []byte {
	var out bytes.Buffer
	out.WriteByte(id)
	putULEB128(&out, uint64(len(body)))
	out.Write(body)
	return out.Bytes()
}
