package hir

import (
	"github.com/nyejames/beanstalk-sub005/internal/ast"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/source"
	"github.com/nyejames/beanstalk-sub005/internal/symbols"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// BuildModule translates a typed AST module into HIR (spec.md §4.1, C4's
// public contract). On any structural failure, no partial HIR is returned.
func BuildModule(astMod *ast.Module, strings *source.StringTable, interner *types.Interner) (*Module, *Error) {
	if astMod == nil {
		return nil, transformErr(source.Default(), "nil ast module")
	}

	mod := &Module{
		TypeContext: interner,
		SideTable:   NewSideTable(),
		Strings:     strings,
	}

	funcIDs := make(map[ids.InternedPath]ids.FunctionId, len(astMod.Functions))
	for i, fn := range astMod.Functions {
		fid := ids.FunctionId(i)
		funcIDs[fn.Path] = fid
		mod.SideTable.FuncPaths[fid] = fn.Path
		if fn.Path == astMod.Start {
			mod.StartFunc = fid
		}
	}

	for i, fn := range astMod.Functions {
		b := newBuilder(ids.FunctionId(i), fn.Path, interner, funcIDs, mod.SideTable)
		hfn, err := b.buildFunc(&fn)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, *hfn)
	}

	return mod, nil
}

// builder holds the per-function lowering state: the block currently being
// filled, the local/symbol bindings in scope, the loop-target stack for
// break/continue, and the synthetic-temp counter.
type builder struct {
	fnID      ids.FunctionId
	fnPath    ids.InternedPath
	interner  *types.Interner
	funcIDs   map[ids.InternedPath]ids.FunctionId
	sideTable *SideTable
	astFn     *ast.Function

	blocks []Block
	locals []LocalInfo

	symToLocal map[symbols.SymbolID]ids.LocalId
	nextLocal  ids.LocalId
	nextExpr   ExprID
	nextTemp   int

	regions    []Region
	curRegion  ids.RegionId

	cur        ids.BlockId // block currently being appended to

	loopStack []loopCtx
}

type loopCtx struct {
	headerBlock ids.BlockId // Continue target
	exitBlock   ids.BlockId // Break target
}

func newBuilder(fnID ids.FunctionId, path ids.InternedPath, interner *types.Interner, funcIDs map[ids.InternedPath]ids.FunctionId, st *SideTable) *builder {
	return &builder{
		fnID:       fnID,
		fnPath:     path,
		interner:   interner,
		funcIDs:    funcIDs,
		sideTable:  st,
		symToLocal: make(map[symbols.SymbolID]ids.LocalId),
		nextTemp:   0,
	}
}

// newLocal allocates a fresh LocalId, recording whether it is a parameter;
// newTemp below marks the locals it allocates as synthetic (spec.md §4.1
// rule 1: synthetics are never resolvable by name).
func (b *builder) newLocal(ty ids.TypeId, isParam bool) ids.LocalId {
	id := b.nextLocal
	b.nextLocal++
	b.locals = append(b.locals, LocalInfo{ID: id, Type: ty, IsParam: isParam})
	return id
}

func (b *builder) newTemp(ty ids.TypeId) ids.LocalId {
	id := b.newLocal(ty, false)
	for i := range b.locals {
		if b.locals[i].ID == id {
			b.locals[i].Synthetic = true
		}
	}
	b.nextTemp++
	return id
}

func (b *builder) newRegion(parent ids.RegionId) ids.RegionId {
	id := ids.RegionId(len(b.regions))
	b.regions = append(b.regions, Region{ID: id, Parent: parent})
	return id
}

func (b *builder) newBlock(region ids.RegionId) ids.BlockId {
	id := ids.BlockId(len(b.blocks))
	b.blocks = append(b.blocks, Block{ID: id, Region: region})
	return id
}

func (b *builder) block(id ids.BlockId) *Block { return &b.blocks[id] }

func (b *builder) emitStmt(s Stmt) {
	blk := b.block(b.cur)
	blk.Statements = append(blk.Statements, s)
}

func (b *builder) pushExpr(e Expr) ExprID {
	e.ID = b.nextExpr
	b.nextExpr++
	blk := b.block(b.cur)
	blk.Exprs = append(blk.Exprs, e)
	return e.ID
}

// setTerminator installs t on the current block. A block's terminator must
// be set exactly once (spec.md §8 property 1: terminator not in statements).
func (b *builder) setTerminator(t Terminator) {
	blk := b.block(b.cur)
	blk.Terminator = t
	blk.terminated = true
}

// switchTo moves the "current block" cursor without creating a new block.
func (b *builder) switchTo(id ids.BlockId) { b.cur = id }

func (b *builder) buildFunc(fn *ast.Function) (*Func, *Error) {
	b.astFn = fn
	b.curRegion = b.newRegion(ids.NoRegionId)
	entry := b.newBlock(b.curRegion)
	b.cur = entry

	var params []ids.LocalId
	for _, p := range fn.Params {
		lid := b.newLocal(p.Type, true)
		b.symToLocal[p.Name] = lid
		params = append(params, lid)
		if b.sideTable.LocalNames[b.fnID] == nil {
			b.sideTable.LocalNames[b.fnID] = make(map[ids.LocalId]string)
		}
	}

	if err := b.lowerBlockBody(fn.Body); err != nil {
		return nil, err
	}

	// spec.md §4.1 rule 6: implicit return for unit-returning functions
	// whose entry path falls off the end without a terminator.
	if !b.block(b.cur).Terminated() {
		if fn.ReturnType != b.interner.Builtins().Unit {
			return nil, transformErr(fn.Span, "function %v falls through without a return of non-unit type", fn.Path)
		}
		unitExpr := b.pushExpr(Expr{Kind: ExprTupleConstruct, Type: b.interner.Builtins().Unit, ValueKind: ValueConst, Region: b.curRegion})
		b.setTerminator(Terminator{Kind: TermReturn, ReturnExpr: unitExpr})
	}

	return &Func{
		ID:         b.fnID,
		Path:       b.fnPath,
		Entry:      entry,
		Params:     params,
		ReturnType: fn.ReturnType,
		Blocks:     b.blocks,
		Locals:     b.locals,
		Regions:    b.regions,
	}, nil
}

// Place helpers used across lower_* files.
func localPlace(id ids.LocalId, ty ids.TypeId) place.Place { return place.Local(id, ty) }
