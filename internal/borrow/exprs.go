package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// loadRef is one place reference found while walking an expression tree.
type loadRef struct {
	place   place.Place
	mutable bool
}

// collectLoads walks the expression rooted at id (within blk's arena) and
// returns every place it reads, in evaluation order. Non-place
// sub-expressions (constants, already-reduced rvalues) contribute nothing.
func collectLoads(blk *hir.Block, id hir.ExprID) []loadRef {
	e := blk.ExprByID(id)
	if e == nil {
		return nil
	}
	switch e.Kind {
	case hir.ExprLoad:
		return []loadRef{{place: e.Load, mutable: e.LoadMutable}}
	case hir.ExprBinOp:
		out := collectLoads(blk, e.LHS)
		return append(out, collectLoads(blk, e.RHS)...)
	case hir.ExprUnaryOp:
		return collectLoads(blk, e.Operand)
	case hir.ExprRange:
		out := collectLoads(blk, e.RangeLow)
		return append(out, collectLoads(blk, e.RangeHigh)...)
	case hir.ExprTupleConstruct:
		var out []loadRef
		for _, el := range e.TupleElems {
			out = append(out, collectLoads(blk, el)...)
		}
		return out
	case hir.ExprStructConstruct:
		var out []loadRef
		for _, fi := range e.StructFields {
			out = append(out, collectLoads(blk, fi.Value)...)
		}
		return out
	case hir.ExprOptionConstruct:
		if e.OptionSome {
			return collectLoads(blk, e.OptionInner)
		}
		return nil
	case hir.ExprCall:
		var out []loadRef
		for _, a := range e.CallArgs {
			out = append(out, collectLoads(blk, a)...)
		}
		return out
	default:
		return nil
	}
}
