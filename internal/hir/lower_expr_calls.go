package hir

import (
	"github.com/nyejames/beanstalk-sub005/internal/ast"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

func pathDebugName(p ids.InternedPath) string {
	return "path#" + itoa(int32(p))
}

func itoa(n int32) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// lowerCallArgs evaluates call arguments strictly left-to-right: the prelude
// statements produced while lowering argument i are emitted before those of
// argument i+1 (spec.md §4.1 rule 3, §8 property 9).
func (b *builder) lowerCallArgs(args []ast.ExprID) ([]ExprID, *Error) {
	out := make([]ExprID, 0, len(args))
	for _, a := range args {
		child := b.astFn.Expr(a)
		id, err := b.lowerExpr(child)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// lowerCallAsExpr lowers a call whose return value is consumed: it emits a
// Call statement with a fresh result temp, then returns a Load of that temp
// as the produced expression (spec.md §4.1 rule 3).
func (b *builder) lowerCallAsExpr(e *ast.Expr) (ExprID, *Error) {
	target, err := b.resolveCallTarget(e)
	if err != nil {
		return 0, err
	}
	args, err := b.lowerCallArgs(e.CallArgs)
	if err != nil {
		return 0, err
	}
	tmp := b.newTemp(e.Type)
	b.emitStmt(Stmt{Kind: StmtCall, Span: e.Span, CallTarget: target, CallArgs: args, CallResult: tmp})
	return b.pushExpr(Expr{Kind: ExprLoad, Type: e.Type, ValueKind: ValuePlace, Span: e.Span, Load: localPlace(tmp, e.Type)}), nil
}

// lowerCallAsStmt lowers a call appearing directly as a statement, whose
// result (if any) is discarded.
func (b *builder) lowerCallAsStmt(e *ast.Expr) *Error {
	target, err := b.resolveCallTarget(e)
	if err != nil {
		return err
	}
	args, err := b.lowerCallArgs(e.CallArgs)
	if err != nil {
		return err
	}
	b.emitStmt(Stmt{Kind: StmtCall, Span: e.Span, CallTarget: target, CallArgs: args, CallResult: ids.NoLocalId})
	return nil
}

// resolveCallTarget maps an AST call target to its HIR form, failing with
// CallTargetNotFound for an unresolvable user function path (spec.md §4.1
// rule 3). Host functions are recorded without a resolution step — matching
// against the HostRegistry is the backend's responsibility, not the HIR
// builder's.
func (b *builder) resolveCallTarget(e *ast.Expr) (CallTarget, *Error) {
	switch e.CallTarget.Kind {
	case ast.CallHostFunction:
		return CallTarget{Kind: CallHostFunction, Path: e.CallTarget.Path, Func: -1}, nil
	default:
		fid, ok := b.funcIDs[e.CallTarget.Path]
		if !ok {
			return CallTarget{}, callTargetErr(e.Span, pathDebugName(e.CallTarget.Path))
		}
		return CallTarget{Kind: CallUserFunction, Path: e.CallTarget.Path, Func: fid}, nil
	}
}
