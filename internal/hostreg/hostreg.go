// Package hostreg implements the HostRegistry external interface of
// spec.md §6: an ordered list of host-provided functions the emitted module
// imports.
package hostreg

// ValueType is a WASM-level value type, shared by host signatures and LIR.
type ValueType uint8

const (
	I32 ValueType = iota
	I64
	F32
	F64
)

func (v ValueType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "?"
	}
}

// Import describes one host-provided function.
type Import struct {
	Module  string
	Name    string
	Params  []ValueType
	Returns []ValueType
}

// Registry is the ordered list of host imports, enumerated once per module
// and consulted by the WASM/JS emitters when lowering Call instructions
// against a HostFunction target.
type Registry struct {
	imports []Import
	byName  map[string]int
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register appends imp, preserving declaration order. Index 0..N-1 of the
// resulting registry become WASM import indices 0..N-1 (spec.md §4.6: host
// imports precede every internal function).
func (r *Registry) Register(imp Import) int {
	idx := len(r.imports)
	r.imports = append(r.imports, imp)
	r.byName[imp.Module+"."+imp.Name] = idx
	return idx
}

// Lookup resolves a host function by module+name to its import index.
func (r *Registry) Lookup(module, name string) (int, bool) {
	idx, ok := r.byName[module+"."+name]
	return idx, ok
}

// LookupByName resolves a host function by its leaf name alone, for call
// sites (LIR Call instructions) that only carry an interned leaf path and
// not the import's module qualifier. Ambiguous only if two imports share a
// leaf name under different modules, which host registries in practice
// don't do.
func (r *Registry) LookupByName(name string) (int, bool) {
	for i, imp := range r.imports {
		if imp.Name == name {
			return i, true
		}
	}
	return 0, false
}

// All returns the registered imports in declaration order.
func (r *Registry) All() []Import { return r.imports }

// Len returns the number of registered imports.
func (r *Registry) Len() int { return len(r.imports) }
