// Package ids defines the small integer identifier types shared across the
// compiler's intermediate representations. Keeping them in one place avoids
// accidental cross-assignment between, say, a BlockId and a LocalId.
package ids

// TypeId indexes the type table owned by internal/types.
type TypeId int32

// NoTypeId marks the absence of a resolved type.
const NoTypeId TypeId = -1

// StructId identifies a struct declaration nominally, by declaring scope.
type StructId int32

// FieldId identifies a field within a specific struct. Two structs with a
// field of the same leaf name never share a FieldId.
type FieldId int32

// FunctionId identifies a function across the module.
type FunctionId int32

// LocalId identifies a local variable or compiler-synthesized temporary
// within a single function. Never resolved by name.
type LocalId int32

// NoLocalId marks the absence of a local.
const NoLocalId LocalId = -1

// ParamId identifies a function parameter.
type ParamId int32

// GlobalId identifies a module-level global.
type GlobalId int32

// BlockId identifies a basic block within a function's HIR or LIR body.
type BlockId int32

// NoBlockId marks the absence of a block.
const NoBlockId BlockId = -1

// RegionId identifies a lexical scope node in the region tree.
type RegionId int32

// NoRegionId marks the root/absent region.
const NoRegionId RegionId = -1

// NodeId identifies a position in the control-flow graph (one per HIR
// statement or terminator).
type NodeId int32

// NoNodeId marks the absence of a CFG node.
const NoNodeId NodeId = -1

// LoanId identifies a borrow-checker loan record.
type LoanId int32

// NoLoanId marks the absence of a loan.
const NoLoanId LoanId = -1

// InternedPath is an opaque handle into the out-of-scope string interner,
// used for diagnostics and for naming functions in the JS backend.
type InternedPath int32
