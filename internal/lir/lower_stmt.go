package lir

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/source"
)

func (l *lowerer) lowerStmt(blk *hir.Block, s *hir.Stmt) *Error {
	switch s.Kind {
	case hir.StmtAssign:
		return l.lowerAssignStmt(blk, s)
	case hir.StmtCall:
		return l.lowerCallStmt(blk, s)
	case hir.StmtDrop:
		return l.lowerDropStmt(s)
	case hir.StmtStoreField:
		return l.lowerStoreFieldStmt(blk, s)
	case hir.StmtExpr:
		_, err := l.lowerExpr(blk, s.Expr)
		if err != nil {
			return err
		}
		l.emit(Instr{Op: OpDrop})
		return nil
	default:
		return loweringErr(s.Span, "unsupported HIR statement kind %d in LIR lowering", s.Kind)
	}
}

func (l *lowerer) lowerAssignStmt(blk *hir.Block, s *hir.Stmt) *Error {
	vt, err := l.lowerExpr(blk, s.AssignExpr)
	if err != nil {
		return err
	}
	return l.storeToPlace(s.AssignPlace, vt)
}

func (l *lowerer) lowerCallStmt(blk *hir.Block, s *hir.Stmt) *Error {
	for _, argID := range s.CallArgs {
		if _, err := l.lowerExpr(blk, argID); err != nil {
			return err
		}
	}
	l.emit(Instr{
		Op:         OpCall,
		CallPath:   s.CallTarget.Path,
		CallFunc:   s.CallTarget.Func,
		CallIsHost: s.CallTarget.Kind == hir.CallHostFunction,
	})
	if idx, ok := l.localIndex[s.CallResult]; ok {
		l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(idx)})
	}
	return nil
}

func (l *lowerer) lowerDropStmt(s *hir.Stmt) *Error {
	idx, ok := l.placeLocal(s.DropPlace)
	if !ok || len(s.DropPlace.Projs) != 0 {
		return loweringErr(s.Span, "drop target must be a bare local place")
	}
	l.emit(Instr{Op: OpCondDrop, Local: localIDFromIndex(idx)})
	return nil
}

func (l *lowerer) lowerStoreFieldStmt(blk *hir.Block, s *hir.Stmt) *Error {
	idx, ok := l.placeLocal(s.StoreBase)
	if !ok {
		return loweringErr(s.Span, "store-field base is not representable in LIR")
	}
	baseTy, ok := l.interner.Lookup(s.StoreBase.Type)
	if !ok {
		return loweringErr(s.Span, "store-field base has unresolved type")
	}
	off := l.interner.FieldOffset(baseTy.StructID, s.StoreField)

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(idx)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})
	vt, err := l.lowerExpr(blk, s.StoreValue)
	if err != nil {
		return err
	}
	l.emit(Instr{Op: storeOpFor(vt), Offset: uint32(off)})
	return nil
}

// storeToPlace writes the value currently on top of the stack into p. Bare
// local/param places become a plain local.set; projected places compute the
// target address first (the value must be re-pushed after the address, so
// the caller-visible stack order is address-then-value for the store op).
func (l *lowerer) storeToPlace(p place.Place, vt ValType) *Error {
	idx, ok := l.placeLocal(p)
	if !ok {
		return loweringErr(source.Default(), "assignment target not representable in LIR")
	}
	if len(p.Projs) == 0 {
		l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(idx)})
		return nil
	}

	// The value to store is already on the stack; stash it while computing
	// the address, then restore it for the store instruction.
	scratch := l.scratch(vt)
	l.emit(Instr{Op: OpLocalSet, Local: localIDFromIndex(scratch)})

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(idx)})
	l.emit(Instr{Op: OpI32Const, I32: place.AddressMask})
	l.emit(Instr{Op: OpI32And})
	off := int32(0)
	for _, pr := range p.Projs {
		switch pr.Kind {
		case place.ProjField:
			off += pr.Offset
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
		}
	}
	if off != 0 {
		l.emit(Instr{Op: OpI32Const, I32: off})
		l.emit(Instr{Op: OpI32Add})
	}

	l.emit(Instr{Op: OpLocalGet, Local: localIDFromIndex(scratch)})
	l.emit(Instr{Op: storeOpFor(vt)})
	return nil
}
