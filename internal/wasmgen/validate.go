package wasmgen

import (
	"context"

	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
	"github.com/tetratelabs/wazero"
)

// structuralCheck runs the internal consistency checks spec.md §4.6 step 4
// names before a module is handed to a conforming parser: function count
// against the declared function-index space, and every call target
// resolving to a real import or user function. A conforming WASM parser
// would itself reject most of the same mistakes, but these checks point at
// the offending LIR call site instead of an opaque binary-parse failure.
func structuralCheck(m *lir.Module, hostReg *hostreg.Registry, l *layout) *Error {
	if len(l.funcTypeIdx) != 2+len(m.Functions) {
		return errf("internal function count %d does not match declared type indices %d", len(m.Functions)+2, len(l.funcTypeIdx))
	}
	for fi := range m.Functions {
		fn := &m.Functions[fi]
		for _, instr := range fn.Body {
			if instr.Op != lir.OpCall {
				continue
			}
			if _, ok := l.resolveCall(instr); !ok {
				kind := "user function"
				if instr.CallIsHost {
					kind = "host import"
				}
				return errf("call in %q targets an unresolved %s", exportLabel(l, fn), kind)
			}
		}
	}
	if found := hostReg.Len(); found != l.numImports {
		return errf("host registry reports %d imports but layout assigned %d", found, l.numImports)
	}
	return nil
}

func exportLabel(l *layout, fn *lir.Func) string {
	return l.exportName(fn.ID)
}

// Validate parses bytes with wazero's conforming WASM decoder, the same
// check a real host would apply before instantiation. wazero is consulted
// only for validation here, never for interpretation — the module these
// bytes describe runs on whatever WASM host embeds this compiler's output.
func Validate(ctx context.Context, wasmBytes []byte) *Error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	if _, err := rt.CompileModule(ctx, wasmBytes); err != nil {
		return errf("module failed wazero validation: %v", err)
	}
	return nil
}
