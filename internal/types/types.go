// Package types implements the structural type table (C1 of the compiler
// core): a deduplicating interner over the type kinds the source language
// exposes to the middle end.
package types

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// Kind enumerates the type kinds the core understands.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindOption
	KindTuple
	KindStruct
	KindFunction
	KindRange
	KindReference
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindOption:
		return "option"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindRange:
		return "range"
	case KindReference:
		return "reference"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Ownership describes how a Collection type owns its backing storage.
type Ownership uint8

const (
	OwnershipOwned Ownership = iota
	OwnershipBorrowed
)

// Field is one (name, type) entry of a struct, in declaration order.
type Field struct {
	ID   ids.FieldId
	Type ids.TypeId
}

// Type is the structural descriptor behind a TypeId. Struct fields live in
// an Interner-owned side table keyed by StructID; tuple and function element
// lists are stored inline as slices and flattened into the dedup key by
// keyOf.
type Type struct {
	Kind Kind

	// KindOption / KindReference / KindCollection
	Inner ids.TypeId

	// KindStruct: nominal identity. Two structs are the same type iff they
	// carry the same StructId, never by comparing field lists.
	StructID ids.StructId

	// KindTuple / KindFunction params
	Elems []ids.TypeId

	// KindFunction
	Returns []ids.TypeId

	// KindReference
	Mutable bool

	// KindCollection
	CollOwnership Ownership
}

type structKey struct {
	id ids.StructId
}

// StructInfo records the declared field layout of a nominal struct.
type StructInfo struct {
	ID     ids.StructId
	Name   string
	Fields []Field
}

// key produces a comparable representation of t, used to deduplicate the
// interner's storage. Slices are flattened into the key via a small buffer
// rather than hashed, since type arity is always small.
type key struct {
	kind     Kind
	inner    ids.TypeId
	structID ids.StructId
	mutable  bool
	ownr     Ownership
	elems    string
	returns  string
}

func encodeIds(xs []ids.TypeId) string {
	if len(xs) == 0 {
		return ""
	}
	b := make([]byte, 0, len(xs)*5)
	for _, x := range xs {
		b = append(b, byte(x), byte(x>>8), byte(x>>16), byte(x>>24), '|')
	}
	return string(b)
}

func keyOf(t Type) key {
	return key{
		kind:     t.Kind,
		inner:    t.Inner,
		structID: t.StructID,
		mutable:  t.Mutable,
		ownr:     t.CollOwnership,
		elems:    encodeIds(t.Elems),
		returns:  encodeIds(t.Returns),
	}
}

// Builtins holds the TypeIds of the primitive kinds, interned once at
// Interner construction.
type Builtins struct {
	Unit   ids.TypeId
	Bool   ids.TypeId
	Int    ids.TypeId
	Float  ids.TypeId
	Char   ids.TypeId
	String ids.TypeId
}

// Interner is the structurally-deduplicating type table (C1). It is built
// once per module and frozen before the borrow checker and LIR lowerer run;
// nothing after HIR construction mutates it (see spec.md §5, "TypeContext").
type Interner struct {
	entries  []Type
	index    map[key]ids.TypeId
	structs  map[ids.StructId]*StructInfo
	builtins Builtins
}

// NewInterner constructs an interner pre-seeded with the built-in scalar
// kinds so callers never need to special-case TypeId 0.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[key]ids.TypeId, 64),
		structs: make(map[ids.StructId]*StructInfo),
	}
	// Unit takes slot 0; the invalid sentinel ids.NoTypeId == -1 is out of
	// range rather than aliasing a valid entry.
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns the TypeIds of the primitive scalar kinds.
func (in *Interner) Builtins() Builtins { return in.builtins }

// Intern deduplicates t structurally and returns its stable TypeId.
func (in *Interner) Intern(t Type) ids.TypeId {
	k := keyOf(t)
	if id, ok := in.index[k]; ok {
		return id
	}
	id := ids.TypeId(len(in.entries))
	in.entries = append(in.entries, t)
	in.index[k] = id
	return id
}

// Lookup returns the descriptor for id, or false if id is out of range.
func (in *Interner) Lookup(id ids.TypeId) (Type, bool) {
	if id < 0 || int(id) >= len(in.entries) {
		return Type{}, false
	}
	return in.entries[id], true
}

// DeclareStruct registers a nominal struct and returns a fresh StructId.
// Field identity is scoped to this StructId: two structs declared with an
// identical leaf field name never share a FieldId (spec.md invariant,
// GLOSSARY "Place"/§8 property 10).
func (in *Interner) DeclareStruct(name string, fieldTypes []ids.TypeId) (ids.StructId, ids.TypeId) {
	id := ids.StructId(len(in.structs) + 1)
	info := &StructInfo{ID: id, Name: name}
	for i, ft := range fieldTypes {
		info.Fields = append(info.Fields, Field{ID: ids.FieldId(i), Type: ft})
	}
	in.structs[id] = info
	return id, in.Intern(Type{Kind: KindStruct, StructID: id})
}

// StructInfo returns the declared field layout for id, or nil if unknown.
func (in *Interner) StructInfo(id ids.StructId) *StructInfo {
	return in.structs[id]
}

// FieldType resolves the type of a struct field by its nominal StructId and
// FieldId, never by leaf name (the "global lookup by leaf" hazard called out
// in spec.md §9).
func (in *Interner) FieldType(structID ids.StructId, field ids.FieldId) (ids.TypeId, bool) {
	info := in.structs[structID]
	if info == nil || int(field) < 0 || int(field) >= len(info.Fields) {
		return ids.NoTypeId, false
	}
	return info.Fields[field].Type, true
}

// Sizeof returns the byte size of a type as laid out in linear memory, per
// spec.md §6 alignment rules: scalars use their natural width, String,
// Option, Collection and Reference are represented by a 4-byte tagged
// pointer, structs are packed in declaration order with each
// field's natural alignment and the total rounded up to the struct's
// alignment.
func (in *Interner) Sizeof(id ids.TypeId) int {
	t, ok := in.Lookup(id)
	if !ok {
		return 4
	}
	switch t.Kind {
	case KindUnit:
		return 0
	case KindBool, KindChar:
		return 4
	case KindInt, KindFloat:
		return 8
	case KindString, KindOption, KindCollection, KindReference:
		return 4 // tagged pointer
	case KindStruct:
		return in.structSize(t.StructID)
	case KindTuple:
		off := 0
		for _, e := range t.Elems {
			off = alignUp(off, in.Alignof(e)) + in.Sizeof(e)
		}
		return alignUp(off, in.Alignof(id))
	default:
		return 4
	}
}

// Alignof returns the natural alignment of id in bytes.
func (in *Interner) Alignof(id ids.TypeId) int {
	t, ok := in.Lookup(id)
	if !ok {
		return 4
	}
	switch t.Kind {
	case KindBool, KindChar, KindString, KindOption, KindCollection, KindReference:
		return 4
	case KindInt, KindFloat:
		return 8
	case KindStruct:
		max := 4
		if info := in.structs[t.StructID]; info != nil {
			for _, f := range info.Fields {
				if a := in.Alignof(f.Type); a > max {
					max = a
				}
			}
		}
		return max
	default:
		return 4
	}
}

// FieldOffset returns the byte offset of field within structID's packed
// layout (natural alignment per field, declaration order).
func (in *Interner) FieldOffset(structID ids.StructId, field ids.FieldId) int {
	info := in.structs[structID]
	if info == nil {
		return 0
	}
	off := 0
	for i, f := range info.Fields {
		off = alignUp(off, in.Alignof(f.Type))
		if ids.FieldId(i) == field {
			return off
		}
		off += in.Sizeof(f.Type)
	}
	return off
}

func (in *Interner) structSize(id ids.StructId) int {
	info := in.structs[id]
	if info == nil {
		return 0
	}
	off := 0
	structAlign := 4
	for _, f := range info.Fields {
		fa := in.Alignof(f.Type)
		if fa > structAlign {
			structAlign = fa
		}
		off = alignUp(off, fa)
		off += in.Sizeof(f.Type)
	}
	return alignUp(off, structAlign)
}

func alignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// IsHeapOwned reports whether values of this type are represented as tagged
// heap pointers at runtime (spec.md §3 "Ownership tag").
func (in *Interner) IsHeapOwned(id ids.TypeId) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindString, KindOption, KindCollection:
		return true
	default:
		return false
	}
}
