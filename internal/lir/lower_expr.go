package lir

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// lowerExpr emits instructions that leave exactly one value of the
// expression's runtime type on the operand stack.
func (l *lowerer) lowerExpr(blk *hir.Block, id hir.ExprID) (ValType, *Error) {
	e := blk.ExprByID(id)
	if e == nil {
		return I32, loweringErr(blk.Terminator.Span, "unresolved expression id in LIR lowering")
	}
	switch e.Kind {
	case hir.ExprInt:
		l.emit(Instr{Op: OpI64Const, I64: e.IntVal})
		return I64, nil
	case hir.ExprFloat:
		l.emit(Instr{Op: OpF64Const, F64: e.FloatVal})
		return F64, nil
	case hir.ExprBool:
		v := int32(0)
		if e.BoolVal {
			v = 1
		}
		l.emit(Instr{Op: OpI32Const, I32: v})
		return I32, nil
	case hir.ExprChar:
		l.emit(Instr{Op: OpI32Const, I32: int32(e.CharVal)})
		return I32, nil
	case hir.ExprStringLiteral, hir.ExprHeapString:
		l.emit(Instr{Op: OpI32ConstStringRef, StringLit: e.StringVal})
		return I32, nil
	case hir.ExprLoad:
		return l.lowerPlaceLoad(e.Load)
	case hir.ExprBinOp:
		return l.lowerBinOp(blk, e)
	case hir.ExprUnaryOp:
		return l.lowerUnaryOp(blk, e)
	case hir.ExprRange:
		return l.lowerRange(blk, e)
	case hir.ExprTupleConstruct:
		return l.lowerTupleConstruct(blk, e)
	case hir.ExprStructConstruct:
		return l.lowerStructConstruct(blk, e)
	case hir.ExprOptionConstruct:
		return l.lowerOptionConstruct(blk, e)
	default:
		return I32, loweringErr(e.Span, "unsupported HIR expression kind %d in LIR lowering", e.Kind)
	}
}

// lowerPlaceLoad resolves a place to address arithmetic (for projected
// places) or a direct local read (for bare roots), per spec.md §4.4 rule 2.
func (l *lowerer) lowerPlaceLoad(p place.Place) (ValType, *Error) {
	idx, ok := l.placeLocal(p)
	if !ok {
		return I32, loweringErr(source.Default(), "place root not representable in LIR")
	}
	vt := valType(p.Type, l.interner)
	if len(p.Projs) == 0 {
		l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(idx)})
		return vt, nil
	}

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(idx)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})

	for _, pr := range p.Projs {
		switch pr.Kind {
		case place.ProjField:
			if pr.Offset != 0 {
				l.emit(Instr{Op: OpI32Const, I32: pr.Offset})
				l.emit(Instr{Op: OpI32Add})
			}
		case place.ProjIndex:
			if pr.IndexOf != nil {
				if iidx, ok := l.placeLocal(*pr.IndexOf); ok {
					l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(iidx)})
					l.emit(Instr{Op: OpI32Const, I32: pr.ElemSize})
					l.emit(Instr{Op: OpI32Mul})
					l.emit(Instr{Op: OpI32Add})
				}
			}
		case place.ProjDeref:
			l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
			l.emit(Instr{Op: OpI32And})
		case place.ProjLength, place.ProjData:
			// Collection header layout is not specified beyond the
			// ownership tag; both projections currently read the base
			// pointer itself.
		}
	}

	l.emit(Instr{Op: loadOpFor(vt)})
	return vt, nil
}

func (l *lowerer) lowerBinOp(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	lt, err := l.lowerExpr(blk, e.LHS)
	if err != nil {
		return I32, err
	}
	if _, err := l.lowerExpr(blk, e.RHS); err != nil {
		return I32, err
	}
	op, ok := binOpInstr(e.BinOp, lt)
	if !ok {
		return I32, loweringErr(e.Span, "binary operator %d has no LIR form for operand type", e.BinOp)
	}
	l.emit(Instr{Op: op})
	return resultTypeOf(e.BinOp, lt), nil
}

func (l *lowerer) lowerUnaryOp(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	vt, err := l.lowerExpr(blk, e.Operand)
	if err != nil {
		return I32, err
	}
	switch e.UnaryOp {
	case hir.UnaryNot:
		l.emit(Instr{Op: OpI32Eqz})
		return I32, nil
	case hir.UnaryNeg:
		switch vt {
		case I64:
			l.emit(Instr{Op: OpI64Const, I64: -1})
			l.emit(Instr{Op: OpI64Mul})
		case F64:
			l.emit(Instr{Op: OpF64Const, F64: -1})
			l.emit(Instr{Op: OpF64Mul})
		default:
			l.emit(Instr{Op: OpI32Const, I32: -1})
			l.emit(Instr{Op: OpI32Mul})
		}
		return vt, nil
	}
	return vt, loweringErr(e.Span, "unsupported unary operator %d", e.UnaryOp)
}

// lowerRange boxes a [low, high) pair as two adjacent i64 slots, since the
// type table has no dedicated Range layout (spec.md §3 lists Range as a
// type kind but leaves its physical representation to the backend).
func (l *lowerer) lowerRange(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	scratch := l.scratch(I32)
	l.emit(Instr{Op: OpAlloc, AllocSize: 16})
	l.emit(Instr{Op: OpI32Const, I32: 1})
	l.emit(Instr{Op: OpI32Or})
	l.emit(Instr{Op: OpLocalTee, Local: localIDFromIndex(scratch)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})

	if _, err := l.lowerExpr(blk, e.RangeLow); err != nil {
		return I32, err
	}
	l.emit(Instr{Op: OpI64Store, Offset: 0})

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})
	if _, err := l.lowerExpr(blk, e.RangeHigh); err != nil {
		return I32, err
	}
	l.emit(Instr{Op: OpI64Store, Offset: 8})

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	return I32, nil
}

func (l *lowerer) lowerTupleConstruct(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	size := l.interner.Sizeof(e.Type)
	scratch := l.scratch(I32)
	l.emit(Instr{Op: OpAlloc, AllocSize: int32(size)})
	l.emit(Instr{Op: OpI32Const, I32: 1})
	l.emit(Instr{Op: OpI32Or})
	l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(scratch)})

	off := 0
	for _, elemID := range e.TupleElems {
		elem := blk.ExprByID(elemID)
		esz := l.interner.Sizeof(elem.Type)
		ealign := l.interner.Alignof(elem.Type)
		off = alignUp(off, ealign)
		l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
		l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
		l.emit(Instr{Op: OpI32And})
		vt, err := l.lowerExpr(blk, elemID)
		if err != nil {
			return I32, err
		}
		l.emit(Instr{Op: storeOpFor(vt), Offset: uint32(off)})
		off += esz
	}

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	return I32, nil
}

func (l *lowerer) lowerStructConstruct(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	size := l.interner.Sizeof(e.Type)
	scratch := l.scratch(I32)
	l.emit(Instr{Op: OpAlloc, AllocSize: int32(size)})
	l.emit(Instr{Op: OpI32Const, I32: 1})
	l.emit(Instr{Op: OpI32Or})
	l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(scratch)})

	for _, fi := range e.StructFields {
		off := l.interner.FieldOffset(e.StructID, fi.Field)
		l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
		l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
		l.emit(Instr{Op: OpI32And})
		vt, err := l.lowerExpr(blk, fi.Value)
		if err != nil {
			return I32, err
		}
		l.emit(Instr{Op: storeOpFor(vt), Offset: uint32(off)})
	}

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	return I32, nil
}

// lowerOptionConstruct boxes a [tag:i32][payload:i64] pair. None leaves the
// payload zeroed.
func (l *lowerer) lowerOptionConstruct(blk *hir.Block, e *hir.Expr) (ValType, *Error) {
	scratch := l.scratch(I32)
	l.emit(Instr{Op: OpAlloc, AllocSize: 16})
	l.emit(Instr{Op: OpI32Const, I32: 1})
	l.emit(Instr{Op: OpI32Or})
	l.emit(Instr{Op: OpLocalTee, Local: localIDFromIndex(scratch)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})

	tag := int32(0)
	if e.OptionSome {
		tag = 1
	}
	l.emit(Instr{Op: OpI32Const, I32: tag})
	l.emit(Instr{Op: OpI32Store, Offset: 0})

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})
	if e.OptionSome {
		if _, err := l.lowerExpr(blk, e.OptionInner); err != nil {
			return I32, err
		}
	} else {
		l.emit(Instr{Op: OpI64Const, I64: 0})
	}
	l.emit(Instr{Op: OpI64Store, Offset: 8})

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	return I32, nil
}
