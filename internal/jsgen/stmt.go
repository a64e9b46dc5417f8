package jsgen

import "github.com/nyejames/beanstalk-sub005/internal/hir"

// emitStmt lowers one HIR statement to zero or more JS statement lines.
// Drop statements are elided: the JS target has no linear memory to free,
// it runs under the host's own garbage collector, so ownership-conditional
// frees have nothing to lower to.
func (e *emitter) emitStmt(w *writer, blk *hir.Block, s *hir.Stmt) (hostIO bool, err *Error) {
	switch s.Kind {
	case hir.StmtAssign:
		val, host, verr := e.exprText(blk, s.AssignExpr)
		if verr != nil {
			return false, verr
		}
		w.stmt(s.Span, "%s = %s;", e.placeText(s.AssignPlace), val)
		return host, nil

	case hir.StmtCall:
		call, host, cerr := e.callText(blk, s.Span, s.CallTarget, s.CallArgs)
		if cerr != nil {
			return false, cerr
		}
		if s.CallResult != -1 {
			w.stmt(s.Span, "let l%d = %s;", s.CallResult, call)
		} else {
			w.stmt(s.Span, "%s;", call)
		}
		return host, nil

	case hir.StmtDrop:
		return false, nil

	case hir.StmtStoreField:
		val, host, verr := e.exprText(blk, s.StoreValue)
		if verr != nil {
			return false, verr
		}
		base := e.placeText(s.StoreBase)
		w.stmt(s.Span, "%s.f%d = %s;", base, s.StoreField, val)
		return host, nil

	case hir.StmtExpr:
		val, host, verr := e.exprText(blk, s.Expr)
		if verr != nil {
			return false, verr
		}
		w.stmt(s.Span, "%s;", val)
		return host, nil
	}
	return false, errf(s.Span, "unsupported HIR statement kind %d", s.Kind)
}
