package peephole

import "github.com/nyejames/beanstalk-sub005/internal/lir"

// foldConstants implements spec.md §4.5 pass 1: two adjacent same-type
// constants followed by a foldable arithmetic operator collapse to one
// constant. Division by zero leaves the window untouched rather than
// folding a trap into a constant.
func foldConstants(in []lir.Instr) ([]lir.Instr, int) {
	out := make([]lir.Instr, 0, len(in))
	folded := 0
	for i := 0; i < len(in); i++ {
		if i+2 < len(in) {
			a, b, op := in[i], in[i+1], in[i+2]
			ka := classify(a)
			kb := classify(b)
			if ka != notConst && ka == kb {
				if folded1, ok := tryFold(ka, a, b, op); ok {
					out = append(out, folded1)
					folded++
					i += 2
					continue
				}
			}
		}
		out = append(out, in[i])
	}
	return out, folded
}

func tryFold(k constKind, a, b, op lir.Instr) (lir.Instr, bool) {
	switch op.Op {
	case addOpFor(k):
		return foldArith(k, a, b, func(x, y int64) int64 { return x + y },
			func(x, y float64) float64 { return x + y })
	case subOpFor(k):
		return foldArith(k, a, b, func(x, y int64) int64 { return x - y },
			func(x, y float64) float64 { return x - y })
	case mulOpFor(k):
		return foldArith(k, a, b, func(x, y int64) int64 { return x * y },
			func(x, y float64) float64 { return x * y })
	case divOpFor(k):
		if isZero(b, k) {
			return lir.Instr{}, false
		}
		return foldArith(k, a, b, func(x, y int64) int64 { return x / y },
			func(x, y float64) float64 { return x / y })
	}
	return lir.Instr{}, false
}

func foldArith(k constKind, a, b lir.Instr, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (lir.Instr, bool) {
	switch k {
	case constI32:
		return constInstr(k, int32(intOp(int64(a.I32), int64(b.I32))), 0, 0, 0), true
	case constI64:
		return constInstr(k, 0, intOp(a.I64, b.I64), 0, 0), true
	case constF32:
		return constInstr(k, 0, 0, float32(floatOp(float64(a.F32), float64(b.F32))), 0), true
	case constF64:
		return constInstr(k, 0, 0, 0, floatOp(a.F64, b.F64)), true
	}
	return lir.Instr{}, false
}
