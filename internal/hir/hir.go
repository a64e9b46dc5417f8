// Package hir implements the High-level IR node model (C2 of spec.md §3/§4):
// functions built from basic blocks with explicit terminators, places, and a
// side table mapping internal ids back to interned source paths. Structured
// after the teacher's internal/mir block/terminator model (vovakirdan-surge),
// generalized to the place- and ownership-aware semantics this spec needs.
package hir

import (
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/source"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// ValueKind classifies what kind of value an expression produces.
type ValueKind uint8

const (
	ValueConst ValueKind = iota
	ValuePlace
	ValueRValue
)

// ExprKind enumerates HIR expression shapes (spec.md §3 HirExpressionKind).
type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprFloat
	ExprBool
	ExprChar
	ExprStringLiteral
	ExprHeapString
	ExprTupleConstruct
	ExprStructConstruct
	ExprLoad
	ExprBinOp
	ExprUnaryOp
	ExprRange
	ExprCall
	ExprOptionConstruct
)

// BinOp enumerates binary operators surviving into HIR.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// UnaryOp enumerates unary operators surviving into HIR.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

// ExprID identifies a HIR expression node within a function.
type ExprID int32

// NoExprID marks the absence of a value, e.g. TermReturn.ReturnExpr for a
// unit return. Expression ids are bump-allocated from 0 per function, so this
// must not collide with a real id — hence -1, not the zero value.
const NoExprID ExprID = -1

// CallTargetKind distinguishes user functions from host imports.
type CallTargetKind uint8

const (
	CallUserFunction CallTargetKind = iota
	CallHostFunction
)

// CallTarget names what a Call expression or statement invokes.
type CallTarget struct {
	Kind CallTargetKind
	Path ids.InternedPath
	Func ids.FunctionId // resolved for CallUserFunction; -1 for host calls
}

// FieldInit is one (field, value) pair of a struct construction.
type FieldInit struct {
	Field ids.FieldId
	Value ExprID
}

// Expr is one HIR expression: (id, kind, ty, value_kind, region) plus a
// kind-specific payload (spec.md §3).
type Expr struct {
	ID        ExprID
	Kind      ExprKind
	Type      ids.TypeId
	ValueKind ValueKind
	Region    ids.RegionId
	Span      source.Span

	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	CharVal   rune
	StringVal string

	Load        place.Place
	LoadMutable bool // true iff this Load is an explicit `&mut` borrow, not a plain read

	BinOp BinOp
	LHS   ExprID
	RHS   ExprID

	UnaryOp   UnaryOp
	Operand   ExprID
	RangeLow  ExprID
	RangeHigh ExprID

	CallTarget CallTarget
	CallArgs   []ExprID

	TupleElems []ExprID

	StructID     ids.StructId
	StructFields []FieldInit

	OptionSome  bool
	OptionInner ExprID
}

// StmtKind enumerates HIR statement shapes (spec.md §3 HirStatement).
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtCall
	StmtDrop
	StmtStoreField
	StmtExpr
)

// Stmt is one HIR statement. Statements never terminate a block.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	// StmtAssign
	AssignPlace place.Place
	AssignExpr  ExprID

	// StmtCall
	CallTarget CallTarget
	CallArgs   []ExprID
	CallResult ids.LocalId // ids.NoLocalId if the result is discarded

	// StmtDrop
	DropPlace place.Place

	// StmtStoreField (field store without an intervening temp, used by the
	// LIR lowerer's fast path for struct-literal initialization)
	StoreBase  place.Place
	StoreField ids.FieldId
	StoreValue ExprID

	// StmtExpr
	Expr ExprID
}

// TermKind enumerates HIR terminator shapes (spec.md §3 HirTerminator).
type TermKind uint8

const (
	TermReturn TermKind = iota
	TermJump
	TermIf
	TermBreak
	TermContinue
	TermPanic
	TermMatch
)

// JumpArg binds a value flowing into a joined block's phi-less parameter
// (modeled as a plain local assignment on entry to Target).
type JumpArg struct {
	Target ids.LocalId
	Value  ExprID
}

// MatchArm is one arm of a Match terminator, dispatching on a tag/option
// discriminant carried by Scrutinee.
type MatchArm struct {
	TagName string
	Target  ids.BlockId
}

// Terminator is the single control-flow exit of a HIR block.
type Terminator struct {
	Kind TermKind
	Span source.Span

	// TermReturn
	ReturnExpr ExprID // invalid ExprID for unit returns

	// TermJump
	JumpTarget ids.BlockId
	JumpArgs   []JumpArg

	// TermIf
	IfCond ExprID
	IfThen ids.BlockId
	IfElse ids.BlockId

	// TermBreak / TermContinue
	LoopTarget ids.BlockId

	// TermPanic
	PanicMsg string

	// TermMatch
	MatchScrutinee place.Place
	MatchArms      []MatchArm
	MatchDefault   ids.BlockId // ids.NoBlockId if exhaustive without one
}

// IsZero reports whether t is still the zero Terminator rather than a real
// one (the zero Terminator is never valid on a constructed block; Block
// always carries one, but this helper lets builder code check
// partially-built blocks).
func (t Terminator) IsZero() bool {
	return t.Kind == TermReturn && t.ReturnExpr == 0 && t.Span == (source.Span{})
}

// Block is one basic block: statements plus exactly one terminator.
type Block struct {
	ID         ids.BlockId
	Region     ids.RegionId
	Locals     []ids.LocalId
	Statements []Stmt
	Terminator Terminator
	Exprs      []Expr // arena of expressions referenced by this block's statements/terminator

	// terminated tracks whether Terminator has been explicitly set by the
	// builder, distinguishing "falls through" from "really returns unit".
	terminated bool
}

// Terminated reports whether the builder has installed a real terminator.
func (b *Block) Terminated() bool { return b.terminated }

// ExprByID returns the expression with the given id within this block's
// arena, or nil if not found.
func (b *Block) ExprByID(id ExprID) *Expr {
	for i := range b.Exprs {
		if b.Exprs[i].ID == id {
			return &b.Exprs[i]
		}
	}
	return nil
}

// Region is one node of the lexical scope tree, used for drop insertion at
// scope exit (spec.md §3 "Regions").
type Region struct {
	ID     ids.RegionId
	Parent ids.RegionId // ids.NoRegionId for the function's root region
}

// LocalInfo records the declared type of a local/parameter/temp.
type LocalInfo struct {
	ID        ids.LocalId
	Type      ids.TypeId
	IsParam   bool
	Synthetic bool // true for compiler-introduced __hir_tmp_N locals
}

// Func is one HIR function.
type Func struct {
	ID         ids.FunctionId
	Path       ids.InternedPath
	Entry      ids.BlockId
	Params     []ids.LocalId
	ReturnType ids.TypeId
	Blocks     []Block
	Locals     []LocalInfo
	Regions    []Region
}

// BlockByID returns a pointer to the block with the given id, or nil.
func (f *Func) BlockByID(id ids.BlockId) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// LocalType resolves the declared type of a local.
func (f *Func) LocalType(id ids.LocalId) ids.TypeId {
	for _, l := range f.Locals {
		if l.ID == id {
			return l.Type
		}
	}
	return ids.NoTypeId
}

// SideTable maps internal FunctionId/LocalId pairs to interned source-level
// paths, used for diagnostics and JS emission (spec.md §3).
type SideTable struct {
	FuncPaths  map[ids.FunctionId]ids.InternedPath
	LocalNames map[ids.FunctionId]map[ids.LocalId]string // debug-only, absent for synthetic temps
}

// NewSideTable constructs an empty side table.
func NewSideTable() *SideTable {
	return &SideTable{
		FuncPaths:  make(map[ids.FunctionId]ids.InternedPath),
		LocalNames: make(map[ids.FunctionId]map[ids.LocalId]string),
	}
}

// NameOf returns the debug name of a local within fn, or "" if it has none
// (always "" for synthetic temporaries: they are never resolvable by name,
// spec.md §9).
func (st *SideTable) NameOf(fn ids.FunctionId, local ids.LocalId) string {
	if names, ok := st.LocalNames[fn]; ok {
		return names[local]
	}
	return ""
}

// Module is the root HIR container (spec.md §3 "HIR module").
type Module struct {
	Functions    []Func
	TypeContext  *types.Interner
	SideTable    *SideTable
	StartFunc    ids.FunctionId
	Strings      *source.StringTable
}

// FuncByID returns a pointer to the function with the given id, or nil.
func (m *Module) FuncByID(id ids.FunctionId) *Func {
	for i := range m.Functions {
		if m.Functions[i].ID == id {
			return &m.Functions[i]
		}
	}
	return nil
}
