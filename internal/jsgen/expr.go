package jsgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/place"
	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// exprText lowers one HIR expression to a JS expression string. callsHostIO
// is set when this expression (or a sub-expression) invokes the host "io"
// import, so the caller can decide whether to prepend the runtime helpers
// block (spec.md §6 JS bit-level contracts).
func (e *emitter) exprText(blk *hir.Block, id hir.ExprID) (text string, callsHostIO bool, err *Error) {
	ex := blk.ExprByID(id)
	if ex == nil {
		return "undefined", false, nil
	}

	switch ex.Kind {
	case hir.ExprInt:
		return strconv.FormatInt(ex.IntVal, 10), false, nil
	case hir.ExprFloat:
		return strconv.FormatFloat(ex.FloatVal, 'g', -1, 64), false, nil
	case hir.ExprBool:
		if ex.BoolVal {
			return "true", false, nil
		}
		return "false", false, nil
	case hir.ExprChar:
		return strconv.QuoteRune(ex.CharVal), false, nil
	case hir.ExprStringLiteral, hir.ExprHeapString:
		return strconv.Quote(ex.StringVal), false, nil
	case hir.ExprLoad:
		return e.placeText(ex.Load), false, nil
	case hir.ExprBinOp:
		lhs, lHost, lerr := e.exprText(blk, ex.LHS)
		if lerr != nil {
			return "", false, lerr
		}
		rhs, rHost, rerr := e.exprText(blk, ex.RHS)
		if rerr != nil {
			return "", false, rerr
		}
		op, ok := binOpText(ex.BinOp)
		if !ok {
			return "", false, errf(ex.Span, "unsupported binary operator")
		}
		return fmt.Sprintf("(%s %s %s)", lhs, op, rhs), lHost || rHost, nil
	case hir.ExprUnaryOp:
		operand, host, oerr := e.exprText(blk, ex.Operand)
		if oerr != nil {
			return "", false, oerr
		}
		switch ex.UnaryOp {
		case hir.UnaryNeg:
			return fmt.Sprintf("(-%s)", operand), host, nil
		case hir.UnaryNot:
			return fmt.Sprintf("(!%s)", operand), host, nil
		}
		return "", false, errf(ex.Span, "unsupported unary operator")
	case hir.ExprRange:
		low, lHost, lerr := e.exprText(blk, ex.RangeLow)
		if lerr != nil {
			return "", false, lerr
		}
		high, hHost, herr := e.exprText(blk, ex.RangeHigh)
		if herr != nil {
			return "", false, herr
		}
		return fmt.Sprintf("[%s, %s]", low, high), lHost || hHost, nil
	case hir.ExprTupleConstruct:
		parts := make([]string, len(ex.TupleElems))
		anyHost := false
		for i, el := range ex.TupleElems {
			t, host, eerr := e.exprText(blk, el)
			if eerr != nil {
				return "", false, eerr
			}
			parts[i] = t
			anyHost = anyHost || host
		}
		return "[" + strings.Join(parts, ", ") + "]", anyHost, nil
	case hir.ExprStructConstruct:
		parts := make([]string, len(ex.StructFields))
		anyHost := false
		for i, fi := range ex.StructFields {
			t, host, eerr := e.exprText(blk, fi.Value)
			if eerr != nil {
				return "", false, eerr
			}
			parts[i] = fmt.Sprintf("f%d: %s", fi.Field, t)
			anyHost = anyHost || host
		}
		return "{" + strings.Join(parts, ", ") + "}", anyHost, nil
	case hir.ExprCall:
		return e.callText(blk, ex.Span, ex.CallTarget, ex.CallArgs)
	case hir.ExprOptionConstruct:
		return "", false, errf(ex.Span, "OptionConstruct is not supported by the JS backend")
	}
	return "", false, errf(ex.Span, "unsupported HIR expression kind %d", ex.Kind)
}

func (e *emitter) callText(blk *hir.Block, span source.Span, target hir.CallTarget, args []hir.ExprID) (string, bool, *Error) {
	argTexts := make([]string, len(args))
	anyHost := false
	for i, a := range args {
		t, host, err := e.exprText(blk, a)
		if err != nil {
			return "", false, err
		}
		argTexts[i] = t
		anyHost = anyHost || host
	}

	if hostName, ok := e.hostCallName(target); ok {
		if hostName == "io" {
			return fmt.Sprintf("__log(%s)", strings.Join(argTexts, ", ")), true, nil
		}
		return fmt.Sprintf("%s(%s)", jsIdent(hostName), strings.Join(argTexts, ", ")), anyHost, nil
	}

	name := e.funcName(target.Func)
	return fmt.Sprintf("%s(%s)", name, strings.Join(argTexts, ", ")), anyHost, nil
}

func binOpText(op hir.BinOp) (string, bool) {
	switch op {
	case hir.BinAdd:
		return "+", true
	case hir.BinSub:
		return "-", true
	case hir.BinMul:
		return "*", true
	case hir.BinDiv:
		return "/", true
	case hir.BinMod:
		return "%", true
	case hir.BinEq:
		return "===", true
	case hir.BinNeq:
		return "!==", true
	case hir.BinLt:
		return "<", true
	case hir.BinLe:
		return "<=", true
	case hir.BinGt:
		return ">", true
	case hir.BinGe:
		return ">=", true
	case hir.BinAnd:
		return "&&", true
	case hir.BinOr:
		return "||", true
	}
	return "", false
}

// placeText renders a place as a JS lvalue/rvalue expression. Locals and
// parameters become plain JS variables; globals become module-scope
// variables; a memory-rooted place has no JS equivalent (linear memory is a
// WASM-only concept, spec.md §6) and is never produced by a conforming HIR
// builder targeting this backend, so it renders to a diagnostic stand-in
// rather than failing emission outright.
func (e *emitter) placeText(p place.Place) string {
	var s string
	switch p.Root.Kind {
	case place.RootLocal:
		s = "l" + strconv.Itoa(int(p.Root.Local))
	case place.RootParam:
		s = "p" + strconv.Itoa(int(p.Root.Param))
	case place.RootGlobal:
		s = "g" + strconv.Itoa(int(p.Root.Global))
	default:
		s = "/* unsupported memory place */undefined"
	}
	for _, pr := range p.Projs {
		switch pr.Kind {
		case place.ProjField:
			s += ".f" + strconv.Itoa(int(pr.Field))
		case place.ProjIndex:
			if pr.IndexOf != nil {
				s += "[" + e.placeText(*pr.IndexOf) + "]"
			}
		case place.ProjDeref:
			// no-op: JS has no pointer indirection to strip.
		case place.ProjLength:
			s += ".length"
		case place.ProjData:
			s += ".data"
		}
	}
	return s
}

func jsIdent(name string) string {
	if name == "" {
		return "__anon"
	}
	return name
}
