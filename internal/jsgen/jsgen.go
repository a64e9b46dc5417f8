// Package jsgen implements the JS emitter (C10 of spec.md §4.7): a direct
// HIR-to-JavaScript lowering used as a secondary backend alongside the
// primary WASM path (internal/wasmgen). Unlike wasmgen, this backend never
// goes through LIR — it walks HIR blocks/terminators directly, the same
// shape the teacher's internal/mir lowerer walks when targeting its own
// single backend, generalized here to two independent backend targets.
package jsgen

import (
	"strconv"
	"strings"

	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// Config is the JsLoweringConfig external contract of spec.md §4.7.
type Config struct {
	Pretty          bool
	EmitLocations   bool
	AutoInvokeStart bool
}

// Artifact is the JsArtifact external type of spec.md §6.
type Artifact struct {
	Source           string
	FunctionNameByID map[ids.FunctionId]string
}

// EmitModule lowers every function of m to one JavaScript source string.
// names resolves each function's export/debug name, the same side-table
// derived map wasmgen.EmitModule takes; pathNames resolves a host call's
// interned path to the plain name a hostreg.Import was registered under, so
// a call to the host function "io" can be recognized and lowered to
// console.log regardless of which InternedPath it was reached through.
func EmitModule(m *hir.Module, hostReg *hostreg.Registry, names map[ids.FunctionId]string, pathNames map[ids.InternedPath]string, cfg Config) (*Artifact, *Error) {
	if hostReg == nil {
		hostReg = hostreg.NewRegistry()
	}

	e := &emitter{
		module:      m,
		hostReg:     hostReg,
		names:       names,
		pathNames:   pathNames,
		explicitCfg: &cfg,
	}

	var bodies []string
	usesHostIO := false
	for i := range m.Functions {
		fn := &m.Functions[i]
		body, hostIO, err := e.emitFunc(fn)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
		usesHostIO = usesHostIO || hostIO
	}

	var out strings.Builder
	if usesHostIO {
		out.WriteString("const __log = (...a) => console.log(...a);\n")
	}
	for _, b := range bodies {
		out.WriteString(b)
		out.WriteString("\n")
	}

	if e.cfg().AutoInvokeStart {
		if startName, ok := names[m.StartFunc]; ok {
			out.WriteString(startName)
			out.WriteString("();\n")
		}
	}

	fnNames := make(map[ids.FunctionId]string, len(m.Functions))
	for i := range m.Functions {
		fnNames[m.Functions[i].ID] = e.funcName(m.Functions[i].ID)
	}

	return &Artifact{Source: out.String(), FunctionNameByID: fnNames}, nil
}

// EmitFunc lowers a single function, with an explicit config, for callers
// (and tests) that don't want a whole module wired through a side table.
func EmitFunc(fn *hir.Func, hostReg *hostreg.Registry, pathNames map[ids.InternedPath]string, name string, cfg Config) (*Artifact, *Error) {
	if hostReg == nil {
		hostReg = hostreg.NewRegistry()
	}
	e := &emitter{
		hostReg:      hostReg,
		pathNames:    pathNames,
		explicitCfg:  &cfg,
		explicitName: name,
	}
	body, hostIO, err := e.emitFunc(fn)
	if err != nil {
		return nil, err
	}
	var out strings.Builder
	if hostIO {
		out.WriteString("const __log = (...a) => console.log(...a);\n")
	}
	out.WriteString(body)
	out.WriteString("\n")
	if cfg.AutoInvokeStart {
		out.WriteString(name)
		out.WriteString("();\n")
	}
	return &Artifact{Source: out.String(), FunctionNameByID: map[ids.FunctionId]string{fn.ID: name}}, nil
}

type emitter struct {
	module    *hir.Module
	hostReg   *hostreg.Registry
	names     map[ids.FunctionId]string
	pathNames map[ids.InternedPath]string

	explicitCfg  *Config
	explicitName string
}

func (e *emitter) cfg() Config {
	if e.explicitCfg != nil {
		return *e.explicitCfg
	}
	return Config{}
}

func (e *emitter) funcName(id ids.FunctionId) string {
	if e.explicitName != "" {
		return e.explicitName
	}
	if name, ok := e.names[id]; ok && name != "" {
		return name
	}
	return "__bst_frag_" + strconv.Itoa(int(id))
}

// emitFunc lowers one HIR function to a JS function declaration, choosing
// structured or dispatcher emission per isStructured (spec.md §4.7 rules 2/3).
func (e *emitter) emitFunc(fn *hir.Func) (string, bool, *Error) {
	w := newWriter(e.cfg())

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "l" + strconv.Itoa(int(p))
	}
	w.raw("function %s(%s) {", e.funcName(fn.ID), strings.Join(params, ", "))
	w.push()

	var hostIO bool
	var err *Error
	if isStructured(fn) {
		hostIO, err = e.emitStructured(w, fn)
	} else {
		hostIO, err = e.emitDispatch(w, fn)
	}
	if err != nil {
		return "", false, err
	}

	w.pop()
	w.raw("}")
	return w.String(), hostIO, nil
}

func (e *emitter) hostCallName(target hir.CallTarget) (string, bool) {
	if target.Kind != hir.CallHostFunction {
		return "", false
	}
	if name, ok := e.pathNames[target.Path]; ok {
		return name, true
	}
	return "", false
}
