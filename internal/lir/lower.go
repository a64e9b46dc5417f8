package lir

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// valType maps a C1 TypeId to the WASM value type its runtime
// representation occupies (spec.md §3 "LIR module"). Struct and Tuple
// values are represented by an i32 pointer into linear memory — they are
// constructed once via __bst_alloc and referenced by address from then on,
// the same as the heap-owned kinds the type table already tags.
func valType(ty ids.TypeId, interner *types.Interner) ValType {
	t, ok := interner.Lookup(ty)
	if !ok {
		return I32
	}
	switch t.Kind {
	case types.KindInt:
		return I64
	case types.KindFloat:
		return F64
	default:
		return I32
	}
}

// isDropCandidate reports whether a local of this type carries the
// ownership tag and must be conditionally freed at scope exit (spec.md
// §4.4 rule 5). This is broader than Interner.IsHeapOwned: struct and tuple
// construction also allocates through __bst_alloc (rule 3) and so also
// carries a tag bit, even though the type table doesn't separately manage
// their lifetime the way it does String/Option/Collection.
func isDropCandidate(ty ids.TypeId, interner *types.Interner) bool {
	if interner.IsHeapOwned(ty) {
		return true
	}
	t, ok := interner.Lookup(ty)
	return ok && (t.Kind == types.KindStruct || t.Kind == types.KindTuple)
}

type lowerer struct {
	fn       *hir.Func
	interner *types.Interner

	locals     []Local
	localIndex map[ids.LocalId]int

	instrs []Instr
}

// Lower converts one HIR function into LIR, assigning concrete local
// indices (spec.md §4.4 rule 1) and materializing ownership manipulation
// inline (rules 3-5).
func Lower(fn *hir.Func, interner *types.Interner) (*Func, *Error) {
	l := &lowerer{fn: fn, interner: interner, localIndex: make(map[ids.LocalId]int)}
	l.allocateLocals()

	for bi := range fn.Blocks {
		blk := &fn.Blocks[bi]
		l.emit(Instr{Op: OpLabel, Block: blk.ID})
		for si := range blk.Statements {
			if err := l.lowerStmt(blk, &blk.Statements[si]); err != nil {
				return nil, err
			}
		}
		if err := l.lowerTerminator(blk); err != nil {
			return nil, err
		}
	}

	var paramTypes []ValType
	for i := range fn.Params {
		paramTypes = append(paramTypes, l.locals[i].Type)
	}
	var returnTypes []ValType
	if fn.ReturnType != interner.Builtins().Unit {
		returnTypes = []ValType{valType(fn.ReturnType, interner)}
	}

	return &Func{
		ID:          fn.ID,
		Path:        fn.Path,
		EntryBlock:  fn.Entry,
		ParamTypes:  paramTypes,
		ReturnTypes: returnTypes,
		Locals:      l.locals,
		Body:        l.instrs,
	}, nil
}

// LowerModule lowers every function of a HIR module into one LIR module,
// preserving function order and the designated start function.
func LowerModule(m *hir.Module) (*Module, *Error) {
	out := &Module{StartFunc: m.StartFunc}
	for fi := range m.Functions {
		fn, err := Lower(&m.Functions[fi], m.TypeContext)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, *fn)
	}
	return out, nil
}

func (l *lowerer) emit(i Instr) { l.instrs = append(l.instrs, i) }

// allocateLocals lays out WASM local indices: parameters first in
// declaration order, then every remaining local grouped by value type
// (spec.md §4.4 rule 1, minimizing the WASM locals section's run-length
// encoding).
func (l *lowerer) allocateLocals() {
	paramSet := make(map[ids.LocalId]bool, len(l.fn.Params))
	for _, p := range l.fn.Params {
		paramSet[p] = true
	}
	for _, p := range l.fn.Params {
		idx := len(l.locals)
		ty := l.fn.LocalType(p)
		l.locals = append(l.locals, Local{Type: valType(ty, l.interner), HeapOwned: isDropCandidate(ty, l.interner)})
		l.localIndex[p] = idx
	}
	for _, want := range []ValType{I32, I64, F32, F64} {
		for _, info := range l.fn.Locals {
			if paramSet[info.ID] {
				continue
			}
			ty := info.Type
			if valType(ty, l.interner) != want {
				continue
			}
			idx := len(l.locals)
			l.locals = append(l.locals, Local{Type: want, HeapOwned: isDropCandidate(ty, l.interner)})
			l.localIndex[info.ID] = idx
		}
	}
}

// scratch allocates a fresh LIR-only local not present in the HIR function,
// used to stage a heap pointer while a struct/tuple literal's fields are
// written.
func (l *lowerer) scratch(ty ValType) int {
	idx := len(l.locals)
	l.locals = append(l.locals, Local{Type: ty})
	return idx
}

func (l *lowerer) localIdx(id ids.LocalId) int {
	if idx, ok := l.localIndex[id]; ok {
		return idx
	}
	return 0
}

// placeLocal resolves a place's local/param root to its LIR local index.
// Field and index projections are not resolved here — lowerPlaceLoad and
// storeToPlace call this for the root, then flatten the projections into
// explicit address arithmetic.
func (l *lowerer) placeLocal(p place.Place) (int, bool) {
	switch p.Root.Kind {
	case place.RootLocal:
		return l.localIdx(p.Root.Local), true
	case place.RootParam:
		// Parameters occupy the first len(Params) indices in declaration
		// order, matching allocateLocals.
		if int(p.Root.Param) >= 0 && int(p.Root.Param) < len(l.fn.Params) {
			return int(p.Root.Param), true
		}
	}
	return 0, false
}
