package wasmgen

import (
	"bytes"

	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Artifact is the WasmArtifact external type of spec.md §6: the emitted
// bytes plus enough metadata for a caller to invoke the module without
// re-deriving function indices.
type Artifact struct {
	Bytes             []byte
	FunctionNameByID  map[ids.FunctionId]string
	MemoryExportName  string
}

// EmitModule turns one LIR module into a validated WASM binary. names
// resolves each function's export/debug name (the pipeline layer builds
// this from the HIR side table's FuncPaths plus the source string table,
// since InternedPath resolution lives outside this package — spec.md §6);
// pathNames resolves a call site's symbolic InternedPath to the plain
// name a hostreg.Import was registered under, for the same reason.
func EmitModule(m *lir.Module, hostReg *hostreg.Registry, names map[ids.FunctionId]string, pathNames map[ids.InternedPath]string) (*Artifact, *Error) {
	if hostReg == nil {
		hostReg = hostreg.NewRegistry()
	}
	l := buildLayout(m, hostReg, names, pathNames)

	code, err := l.codeSection(m)
	if err != nil {
		return nil, err
	}

	startIdx, startName, hasStart := l.startExport(m)

	var out bytes.Buffer
	out.Write(wasmMagic)
	out.Write(wasmVersion)
	out.Write(l.typeSection())
	out.Write(l.importSection())
	out.Write(l.functionSection())
	out.Write(memorySection())
	out.Write(l.globalSection())
	out.Write(l.exportSection(startIdx, startName, hasStart))
	out.Write(code)
	out.Write(l.dataSection())

	if err := structuralCheck(m, hostReg, l); err != nil {
		return nil, err
	}

	fnNames := make(map[ids.FunctionId]string, len(m.Functions))
	for fi := range m.Functions {
		fnNames[m.Functions[fi].ID] = l.exportName(m.Functions[fi].ID)
	}

	return &Artifact{Bytes: out.Bytes(), FunctionNameByID: fnNames, MemoryExportName: "memory"}, nil
}

func (l *layout) startExport(m *lir.Module) (idx int, name string, ok bool) {
	for fi := range m.Functions {
		if m.Functions[fi].ID == m.StartFunc {
			return l.funcIndex[m.StartFunc], l.exportName(m.StartFunc), true
		}
	}
	return 0, "", false
}
