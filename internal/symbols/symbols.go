// Package symbols is a minimal stand-in for the out-of-scope name-resolution
// collaborator: the typed AST refers to bindings by SymbolID, never by leaf
// name, and this core never re-resolves names (spec.md §9 "Identifier
// identity").
package symbols

// SymbolID identifies a resolved binding (local, parameter or global).
type SymbolID int32

// NoSymbolID marks an absent/unresolved binding.
const NoSymbolID SymbolID = -1

// IsValid reports whether id names a real binding.
func (id SymbolID) IsValid() bool { return id >= 0 }
