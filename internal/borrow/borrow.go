// Package borrow implements the ownership/lifetime checker (C6 of spec.md
// §4.3): five sub-passes over a CFG that create loans, propagate them
// forward, compute backward place liveness, refine candidate moves into
// real moves, and detect conflicting/illegal borrows. Grounded on the
// teacher's internal/sema scope-based borrow conflict table for the
// Mut×Mut/Mut×Shared rules, and its internal/mir/async_liveness.go
// worklist fixed-point algorithm for the forward/backward dataflow
// machinery itself.
package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/cfg"
	"github.com/nyejames/beanstalk-sub005/internal/diag"
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/types"
)

// LoanKind enumerates the loan kinds tracked by B1-B5 (spec.md §3 "Borrow
// state").
type LoanKind uint8

const (
	Shared LoanKind = iota
	Mutable
	CandidateMove
	Move // B4 refines a live CandidateMove into this
)

func (k LoanKind) String() string {
	switch k {
	case Mutable:
		return "mutable"
	case CandidateMove:
		return "candidate-move"
	case Move:
		return "move"
	default:
		return "shared"
	}
}

// Loan is one borrow-checker loan record.
type Loan struct {
	ID     ids.LoanId
	Place  place.Place
	Kind   LoanKind
	Origin ids.NodeId
}

// LoanSet is an immutable-by-convention set of loan ids; callers copy
// before mutating so union operations in B2 stay monotone.
type LoanSet map[ids.LoanId]bool

func (s LoanSet) clone() LoanSet {
	out := make(LoanSet, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s LoanSet) union(other LoanSet) LoanSet {
	out := s.clone()
	for k := range other {
		out[k] = true
	}
	return out
}

func (s LoanSet) equal(other LoanSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other[k] {
			return false
		}
	}
	return true
}

// PlaceSet is a set of places keyed by their canonical string form.
type PlaceSet map[string]place.Place

func (s PlaceSet) clone() PlaceSet {
	out := make(PlaceSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s PlaceSet) union(other PlaceSet) PlaceSet {
	out := s.clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

func (s PlaceSet) without(other PlaceSet) PlaceSet {
	out := make(PlaceSet, len(s))
	for k, v := range s {
		if _, ok := other[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func (s PlaceSet) equal(other PlaceSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Result is the outcome of checking one function.
type Result struct {
	Func       *hir.Func
	Graph      *cfg.Graph
	Loans      []Loan
	LiveIn     []LoanSet  // indexed by NodeId: active loans on entry
	LiveOut    []LoanSet  // indexed by NodeId: active loans on exit
	PlaceIn    []PlaceSet // indexed by NodeId: places live-in (B3)
	PlaceOut   []PlaceSet // indexed by NodeId: places live-out (B3)
	Diagnostics *diag.Bag
}

// checker holds the mutable working state shared by B1-B5.
type checker struct {
	fn       *hir.Func
	g        *cfg.Graph
	interner *types.Interner

	loans   []Loan
	gens    [][]ids.LoanId  // per node: loans created there
	defs    [][]place.Place // per node: places redefined there
	uses    [][]place.Place // per node: places read there

	liveIn, liveOut   []LoanSet
	placeIn, placeOut []PlaceSet

	diags *diag.Bag
}

// Check runs B1 through B5 over fn's CFG and returns the accumulated state
// plus any diagnostics. A function with BorrowCheck errors still returns a
// populated Result so callers can inspect what was computed, but the
// pipeline must not emit an artifact when diags.HasErrors().
func Check(fn *hir.Func, interner *types.Interner) *Result {
	g := cfg.Build(fn)
	c := &checker{
		fn:       fn,
		g:        g,
		interner: interner,
		diags:    diag.NewBag(0),
	}
	n := len(g.Nodes)
	c.gens = make([][]ids.LoanId, n)
	c.defs = make([][]place.Place, n)
	c.uses = make([][]place.Place, n)
	c.liveIn = make([]LoanSet, n)
	c.liveOut = make([]LoanSet, n)
	c.placeIn = make([]PlaceSet, n)
	c.placeOut = make([]PlaceSet, n)
	for i := 0; i < n; i++ {
		c.liveIn[i] = LoanSet{}
		c.liveOut[i] = LoanSet{}
		c.placeIn[i] = PlaceSet{}
		c.placeOut[i] = PlaceSet{}
	}

	c.runB1()
	c.runB2()
	c.runB3()
	c.runB4()
	c.runB5()
	c.ValidateParamLifetimes()

	return &Result{
		Func:        fn,
		Graph:       g,
		Loans:       c.loans,
		LiveIn:      c.liveIn,
		LiveOut:     c.liveOut,
		PlaceIn:     c.placeIn,
		PlaceOut:    c.placeOut,
		Diagnostics: c.diags,
	}
}

func (c *checker) newLoan(p place.Place, kind LoanKind, origin ids.NodeId) ids.LoanId {
	id := ids.LoanId(len(c.loans))
	c.loans = append(c.loans, Loan{ID: id, Place: p, Kind: kind, Origin: origin})
	return id
}

func (c *checker) loan(id ids.LoanId) *Loan {
	if id < 0 || int(id) >= len(c.loans) {
		return nil
	}
	return &c.loans[id]
}
