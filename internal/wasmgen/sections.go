package wasmgen

import (
	"bytes"

	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
)

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10
	secData     = 11
)

func (l *layout) typeSection() []byte {
	var body bytes.Buffer
	putULEB128(&body, uint64(len(l.types)))
	for _, t := range l.types {
		body.WriteByte(0x60)
		putULEB128(&body, uint64(len(t.params)))
		body.Write(t.params)
		putULEB128(&body, uint64(len(t.results)))
		body.Write(t.results)
	}
	return section(secType, body.Bytes())
}

func (l *layout) importSection() []byte {
	var body bytes.Buffer
	imports := l.hostReg.All()
	putULEB128(&body, uint64(len(imports)))
	for i, imp := range imports {
		putName(&body, imp.Module)
		putName(&body, imp.Name)
		body.WriteByte(0x00) // func import
		putULEB128(&body, uint64(l.importTypeIdx(i, imp)))
	}
	return section(secImport, body.Bytes())
}

func (l *layout) importTypeIdx(_ int, imp hostreg.Import) int {
	return l.typeIdx[sigKey(funcSig{params: valueTypesToBytes(imp.Params), results: valueTypesToBytes(imp.Returns)})]
}

// functionSection declares, in order, the type index of every internal
// (non-imported) function: __bst_alloc, __bst_free, then user functions.
func (l *layout) functionSection() []byte {
	var body bytes.Buffer
	putULEB128(&body, uint64(len(l.funcTypeIdx)))
	for _, ti := range l.funcTypeIdx {
		putULEB128(&body, uint64(ti))
	}
	return section(secFunction, body.Bytes())
}

func memorySection() []byte {
	var body bytes.Buffer
	putULEB128(&body, 1) // one memory
	body.WriteByte(0x01) // flags: min+max present
	putULEB128(&body, uint64(initialPages))
	putULEB128(&body, uint64(maxPages))
	return section(secMemory, body.Bytes())
}

// globalSection declares __heap_ptr, the one mutable global the bump
// allocator needs (spec.md §4.4 rule 3).
func (l *layout) globalSection() []byte {
	var body bytes.Buffer
	putULEB128(&body, 1)
	body.WriteByte(0x7F) // i32
	body.WriteByte(0x01) // mutable
	body.WriteByte(0x41) // i32.const
	putSLEB128(&body, int64(l.heapBase))
	body.WriteByte(0x0B) // end
	return section(secGlobal, body.Bytes())
}

// exportSection exports the start function (if any) by its source name,
// plus the shared linear memory (spec.md §4.6: "the start function, if
// any, is exported by its source name ... memory is exported as
// 'memory'"). There is no explicit-export-table field on hir.Module yet
// (spec.md's "additional exports come from the module's explicit export
// table" names a mechanism the AST/HIR boundary doesn't carry through
// today), so the start function is the only function export this backend
// produces — see DESIGN.md.
func (l *layout) exportSection(startIdx int, startName string, hasStart bool) []byte {
	var body bytes.Buffer
	count := 1
	if hasStart {
		count = 2
	}
	putULEB128(&body, uint64(count))
	if hasStart {
		putName(&body, startName)
		body.WriteByte(0x00) // func export
		putULEB128(&body, uint64(startIdx))
	}
	putName(&body, "memory")
	body.WriteByte(0x02) // mem export
	putULEB128(&body, 0)
	return section(secExport, body.Bytes())
}

func (l *layout) dataSection() []byte {
	var body bytes.Buffer
	if len(l.dataBlob) == 0 {
		putULEB128(&body, 0)
		return section(secData, body.Bytes())
	}
	putULEB128(&body, 1)
	body.WriteByte(0x00) // active, memory 0
	body.WriteByte(0x41) // i32.const
	putSLEB128(&body, int64(nullPageSize))
	body.WriteByte(0x0B) // end
	putULEB128(&body, uint64(len(l.dataBlob)))
	body.Write(l.dataBlob)
	return section(secData, body.Bytes())
}
