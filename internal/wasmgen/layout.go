package wasmgen

import (
	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

const (
	wasmPageSize = 65536
	initialPages = 16  // 1MiB, spec.md §4.6 memory section
	maxPages     = 256 // 16MiB

	// nullPageSize reserves [0, 64KiB) so a null/zero pointer is never a
	// valid address, matching the ownership tag scheme's use of address 0
	// as "no pointer" in diagnostics.
	nullPageSize = 65536
)

// valTypeByte is the WASM encoding of a value type (core spec §5.3.1).
func valTypeByte(vt lir.ValType) byte {
	switch vt {
	case lir.I32:
		return 0x7F
	case lir.I64:
		return 0x7E
	case lir.F32:
		return 0x7D
	default:
		return 0x7C
	}
}

func hostValTypeByte(vt hostreg.ValueType) byte {
	switch vt {
	case hostreg.I32:
		return 0x7F
	case hostreg.I64:
		return 0x7E
	case hostreg.F32:
		return 0x7D
	default:
		return 0x7C
	}
}

// funcSig is a deduplication key and section-3/section-2 payload for one
// function type.
type funcSig struct {
	params  []byte
	results []byte
}

func sigKey(s funcSig) string {
	return string(s.params) + "|" + string(s.results)
}

// layout assigns every cross-function resource (type indices, the combined
// function-index space, static string offsets and the heap base) a single
// concrete value, the way spec.md §4.6 requires before any function body
// can be encoded (a Call or a string-literal reference needs the whole
// module assembled first, mirroring the symbolic deferral in
// internal/lir's CallPath/OpI32ConstStringRef).
type layout struct {
	hostReg *hostreg.Registry

	types    []funcSig
	typeIdx  map[string]int

	// funcIndex maps every function in the final WASM index space —
	// imports first, then __bst_alloc, __bst_free, then user functions in
	// module order — to its concrete index.
	funcIndex    map[ids.FunctionId]int
	allocFuncIdx int
	freeFuncIdx  int
	numImports   int
	funcTypeIdx  []int // parallel to the internal-function index space (alloc, free, users...)

	stringOffset map[string]int32
	dataBlob     []byte
	heapBase     int32

	names     map[ids.FunctionId]string
	pathNames map[ids.InternedPath]string
}

// buildLayout assigns every cross-function resource a concrete value.
// pathNames resolves a LIR call's symbolic InternedPath to the plain name
// a hostreg.Import was registered under — the path interner itself lives
// outside this module (spec.md §6), so the pipeline layer that owns the
// real source string table supplies this mapping.
func buildLayout(m *lir.Module, hostReg *hostreg.Registry, names map[ids.FunctionId]string, pathNames map[ids.InternedPath]string) *layout {
	l := &layout{
		hostReg:      hostReg,
		typeIdx:      make(map[string]int),
		funcIndex:    make(map[ids.FunctionId]int),
		stringOffset: make(map[string]int32),
		names:        names,
		pathNames:    pathNames,
	}

	for _, imp := range hostReg.All() {
		l.internType(valueTypesToBytes(imp.Params), valueTypesToBytes(imp.Returns))
	}
	l.numImports = hostReg.Len()

	l.allocFuncIdx = l.numImports + 0
	l.freeFuncIdx = l.numImports + 1
	l.funcTypeIdx = append(l.funcTypeIdx,
		l.internType([]byte{0x7F}, []byte{0x7F}), // __bst_alloc(i32) -> i32
		l.internType([]byte{0x7F}, nil),          // __bst_free(i32)
	)

	next := l.numImports + 2
	for fi := range m.Functions {
		fn := &m.Functions[fi]
		l.funcIndex[fn.ID] = next
		next++
		l.funcTypeIdx = append(l.funcTypeIdx, l.internType(lirTypesToBytes(fn.ParamTypes), lirTypesToBytes(fn.ReturnTypes)))
	}

	l.assignStrings(m)
	return l
}

func (l *layout) internType(params, results []byte) int {
	sig := funcSig{params: params, results: results}
	key := sigKey(sig)
	if idx, ok := l.typeIdx[key]; ok {
		return idx
	}
	idx := len(l.types)
	l.types = append(l.types, sig)
	l.typeIdx[key] = idx
	return idx
}

func valueTypesToBytes(vts []hostreg.ValueType) []byte {
	if len(vts) == 0 {
		return nil
	}
	out := make([]byte, len(vts))
	for i, v := range vts {
		out[i] = hostValTypeByte(v)
	}
	return out
}

func lirTypesToBytes(vts []lir.ValType) []byte {
	if len(vts) == 0 {
		return nil
	}
	out := make([]byte, len(vts))
	for i, v := range vts {
		out[i] = valTypeByte(v)
	}
	return out
}

// assignStrings walks every function body collecting OpI32ConstStringRef
// literals, deduplicating by exact text and concatenating them (each
// null-terminated, so a host import reading a C-string convention can find
// the end without a separately-passed length) into one data segment placed
// right after the null page.
func (l *layout) assignStrings(m *lir.Module) {
	off := int32(nullPageSize)
	for fi := range m.Functions {
		for _, instr := range m.Functions[fi].Body {
			if instr.Op != lir.OpI32ConstStringRef {
				continue
			}
			if _, ok := l.stringOffset[instr.StringLit]; ok {
				continue
			}
			l.stringOffset[instr.StringLit] = off
			l.dataBlob = append(l.dataBlob, []byte(instr.StringLit)...)
			l.dataBlob = append(l.dataBlob, 0)
			off += int32(len(instr.StringLit)) + 1
		}
	}
	l.heapBase = alignUp32(off, 8)
}

func alignUp32(v int32, align int32) int32 {
	r := v % align
	if r == 0 {
		return v
	}
	return v + (align - r)
}

// resolveCall turns a symbolic LIR call target into a concrete WASM
// function index, per the deferral internal/lir.Instr.CallPath documents.
func (l *layout) resolveCall(instr lir.Instr) (int, bool) {
	if instr.CallIsHost {
		name, ok := l.pathNames[instr.CallPath]
		if !ok {
			return 0, false
		}
		return l.hostReg.LookupByName(name)
	}
	idx, ok := l.funcIndex[instr.CallFunc]
	return idx, ok
}

// exportName resolves a function's WASM export name, falling back to a
// stable synthetic name when the pipeline didn't supply one (e.g. in tests
// that build a lir.Module by hand).
func (l *layout) exportName(id ids.FunctionId) string {
	if n, ok := l.names[id]; ok && n != "" {
		return n
	}
	return "func" + itoaDec(int32(id))
}

func itoaDec(n int32) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
