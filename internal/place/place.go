// Package place implements the place model of spec.md §3 (C1): a static
// description of a storage location built from a root plus an ordered list
// of projections. Places are the addressing unit shared by HIR, the borrow
// checker and LIR.
package place

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// RootKind enumerates the storage classes a place can be rooted in.
type RootKind uint8

const (
	RootLocal RootKind = iota
	RootGlobal
	RootParam
	RootMemory
)

// Root identifies where a place's storage begins.
type Root struct {
	Kind RootKind

	Local  ids.LocalId  // RootLocal
	Global ids.GlobalId // RootGlobal
	Param  ids.ParamId  // RootParam

	// RootMemory: a fixed byte offset into linear memory (e.g. a static
	// data blob), not reachable through a local/global.
	MemoryBase   int32
	MemoryOffset int32
}

// ProjKind enumerates the projection steps that can refine a place.
type ProjKind uint8

const (
	ProjField ProjKind = iota
	ProjIndex
	ProjDeref
	ProjLength
	ProjData
)

// Proj is one projection step.
type Proj struct {
	Kind ProjKind

	// ProjField
	Field  ids.FieldId
	Offset int32
	Size   int32

	// ProjIndex: the element size of the indexed collection, and the place
	// describing the index value itself (usually a Local holding an int).
	ElemSize int32
	IndexOf  *Place
}

// Place is root + ordered projections, per spec.md §3.
type Place struct {
	Root  Root
	Projs []Proj
	Type  ids.TypeId // type of the fully-projected location
}

// Local constructs a bare local place.
func Local(id ids.LocalId, ty ids.TypeId) Place {
	return Place{Root: Root{Kind: RootLocal, Local: id}, Type: ty}
}

// Param constructs a bare parameter place.
func Param(id ids.ParamId, ty ids.TypeId) Place {
	return Place{Root: Root{Kind: RootParam, Param: id}, Type: ty}
}

// Global constructs a bare global place.
func Global(id ids.GlobalId, ty ids.TypeId) Place {
	return Place{Root: Root{Kind: RootGlobal, Global: id}, Type: ty}
}

// Field returns p projected through a struct field, computing the byte
// offset/size from the type table (nominal: structID+FieldId only, never a
// leaf-name lookup).
func (p Place) Field(interner *types.Interner, structID ids.StructId, field ids.FieldId) Place {
	fieldTy, _ := interner.FieldType(structID, field)
	off := int32(interner.FieldOffset(structID, field))
	size := int32(interner.Sizeof(fieldTy))
	out := p
	out.Projs = append(append([]Proj(nil), p.Projs...), Proj{
		Kind: ProjField, Field: field, Offset: off, Size: size,
	})
	out.Type = fieldTy
	return out
}

// Index returns p projected by an index place, tracking the element size.
func (p Place) Index(idx Place, elemTy ids.TypeId, interner *types.Interner) Place {
	out := p
	out.Projs = append(append([]Proj(nil), p.Projs...), Proj{
		Kind: ProjIndex, ElemSize: int32(interner.Sizeof(elemTy)), IndexOf: &idx,
	})
	out.Type = elemTy
	return out
}

// Deref returns p projected through a reference.
func (p Place) Deref(innerTy ids.TypeId) Place {
	out := p
	out.Projs = append(append([]Proj(nil), p.Projs...), Proj{Kind: ProjDeref})
	out.Type = innerTy
	return out
}

// IsLocal reports whether p is a bare, unprojected local (used heavily by
// the borrow checker's conflict detection and the LIR lowerer's fast path).
func (p Place) IsLocal() bool {
	return p.Root.Kind == RootLocal && len(p.Projs) == 0
}

// BaseLocal returns the root local id if p is rooted in a local (regardless
// of projections), and ok=false otherwise.
func (p Place) BaseLocal() (ids.LocalId, bool) {
	if p.Root.Kind != RootLocal {
		return ids.NoLocalId, false
	}
	return p.Root.Local, true
}

// String renders a debug form, e.g. "local7.f2[idx]".
func (p Place) String() string {
	var s string
	switch p.Root.Kind {
	case RootLocal:
		s = fmt.Sprintf("local%d", p.Root.Local)
	case RootParam:
		s = fmt.Sprintf("param%d", p.Root.Param)
	case RootGlobal:
		s = fmt.Sprintf("global%d", p.Root.Global)
	case RootMemory:
		s = fmt.Sprintf("mem[%d+%d]", p.Root.MemoryBase, p.Root.MemoryOffset)
	}
	for _, pr := range p.Projs {
		switch pr.Kind {
		case ProjField:
			s += fmt.Sprintf(".f%d", pr.Field)
		case ProjIndex:
			s += "[idx]"
		case ProjDeref:
			s += ".*"
		case ProjLength:
			s += ".len"
		case ProjData:
			s += ".data"
		}
	}
	return s
}

// Overlaps reports whether a and b may alias: one is a projection prefix of
// the other, or the two are identical (spec.md §4.3 B5). Roots must match
// exactly (different locals never overlap); within the shorter projection
// list, any kind or field mismatch breaks the overlap except Index-vs-Index, which is
// treated conservatively as overlapping because indices are not compared by
// value here.
func Overlaps(a, b Place) bool {
	if !sameRoot(a.Root, b.Root) {
		return false
	}
	n := len(a.Projs)
	if len(b.Projs) < n {
		n = len(b.Projs)
	}
	for i := 0; i < n; i++ {
		pa, pb := a.Projs[i], b.Projs[i]
		if pa.Kind != pb.Kind {
			return false
		}
		if pa.Kind == ProjField && pa.Field != pb.Field {
			return false
		}
	}
	return true
}

func sameRoot(a, b Root) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case RootLocal:
		return a.Local == b.Local
	case RootParam:
		return a.Param == b.Param
	case RootGlobal:
		return a.Global == b.Global
	case RootMemory:
		return a.MemoryBase == b.MemoryBase && a.MemoryOffset == b.MemoryOffset
	}
	return false
}

// IsAncestorOf reports whether a is a strict projection prefix of b (used by
// the move/BorrowAcrossMove rule: moving a invalidates any borrow of a field
// of a).
func IsAncestorOf(a, b Place) bool {
	if !sameRoot(a.Root, b.Root) || len(a.Projs) >= len(b.Projs) {
		return false
	}
	for i := range a.Projs {
		if a.Projs[i].Kind != b.Projs[i].Kind {
			return false
		}
		if a.Projs[i].Kind == ProjField && a.Projs[i].Field != b.Projs[i].Field {
			return false
		}
	}
	return true
}

// WellFormed checks the invariant of spec.md §3: every projection must be
// type-legal against the prefix's type. Field projections are checked
// against the type table; Index/Deref/Length/Data are checked structurally
// only (the caller that built them already resolved element/inner types).
func WellFormed(p Place, interner *types.Interner) bool {
	cur := p.rootType()
	for _, pr := range p.Projs {
		t, ok := interner.Lookup(cur)
		if !ok {
			return false
		}
		switch pr.Kind {
		case ProjField:
			if t.Kind != types.KindStruct {
				return false
			}
			ft, ok := interner.FieldType(t.StructID, pr.Field)
			if !ok {
				return false
			}
			cur = ft
		case ProjDeref:
			if t.Kind != types.KindReference {
				return false
			}
			cur = t.Inner
		case ProjIndex:
			if t.Kind != types.KindCollection {
				return false
			}
			cur = t.Inner
		case ProjLength, ProjData:
			if t.Kind != types.KindCollection && t.Kind != types.KindString {
				return false
			}
		}
	}
	return true
}

func (p Place) rootType() ids.TypeId {
	return p.Type
}

// Ownership tag helpers (spec.md §3 "Ownership tag", §6 bit-level contracts),
// shared by the LIR lowerer and the WASM emitter's runtime helpers.
const (
	// OwnershipMask isolates the low ownership bit.
	OwnershipMask int32 = 1
	// AddressMask clears the ownership bit to recover the real address.
	AddressMask int32 = ^int32(1)
)

// TagOwned ORs the ownership bit into a freshly allocated pointer.
func TagOwned(ptr int32) int32 { return ptr | OwnershipMask }

// TagBorrowed ANDs the ownership bit off, producing a borrowed view of ptr.
func TagBorrowed(ptr int32) int32 { return ptr &^ OwnershipMask }

// Untag recovers the real heap address regardless of tag state.
func Untag(ptr int32) int32 { return ptr & AddressMask }

// IsOwned reports the tag bit of ptr.
func IsOwned(ptr int32) bool { return ptr&OwnershipMask != 0 }
