package wasmgen

import (
	"bytes"

	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

// finishBody prepends the locals declaration vector (every local beyond
// the function's parameters, plus the synthetic dispatch-index local) to
// an already-encoded instruction stream and wraps the whole thing with its
// LEB128 size prefix (core spec §5.5.2 "code").
func finishBody(fn *lir.Func, code []byte) []byte {
	return withSizePrefix(func(buf *bytes.Buffer) {
		groups := localGroups(fn)
		putULEB128(buf, uint64(len(groups)))
		for _, g := range groups {
			putULEB128(buf, uint64(g.count))
			buf.WriteByte(g.vt)
		}
		buf.Write(code)
	})
}

type localGroup struct {
	count int
	vt    byte
}

// localGroups run-length-encodes the locals declared beyond the function's
// parameters plus the one synthetic i32 dispatch index wasmgen itself
// introduces. internal/lir.allocateLocals groups HIR locals by type, but
// scratch locals follow in creation order, so only adjacent same-typed runs
// share a group.
func localGroups(fn *lir.Func) []localGroup {
	var groups []localGroup
	beyondParams := fn.Locals[len(fn.ParamTypes):]
	for _, loc := range beyondParams {
		b := valTypeByte(loc.Type)
		if len(groups) > 0 && groups[len(groups)-1].vt == b {
			groups[len(groups)-1].count++
			continue
		}
		groups = append(groups, localGroup{count: 1, vt: b})
	}
	if len(groups) > 0 && groups[len(groups)-1].vt == 0x7F {
		groups[len(groups)-1].count++
	} else {
		groups = append(groups, localGroup{count: 1, vt: 0x7F})
	}
	return groups
}

func (l *layout) codeSection(m *lir.Module) ([]byte, *Error) {
	var body bytes.Buffer
	putULEB128(&body, uint64(2+len(m.Functions)))
	body.Write(allocBody())
	body.Write(freeBody())
	for fi := range m.Functions {
		fnBody, err := encodeFunc(l, &m.Functions[fi])
		if err != nil {
			return nil, err
		}
		body.Write(fnBody)
	}
	return section(secCode, body.Bytes()), nil
}
