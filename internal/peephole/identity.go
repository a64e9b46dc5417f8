package peephole

import "github.com/nyejames/beanstalk-sub005/internal/lir"

// removeIdentities implements spec.md §4.5 pass 2: `C+0`, `0+C`, `C-0`,
// `C*1`, `1*C`, `C/1` collapse to the non-identity operand's own
// instruction, with the constant push and the operator both erased.
func removeIdentities(in []lir.Instr) ([]lir.Instr, int) {
	out := make([]lir.Instr, 0, len(in))
	removed := 0
	for i := 0; i < len(in); i++ {
		if i+2 < len(in) {
			x, c, op := in[i], in[i+1], in[i+2]
			if isRightIdentity(x, c, op) {
				out = append(out, x)
				removed++
				i += 2
				continue
			}
			cLeft, y, op2 := in[i], in[i+1], in[i+2]
			if isLeftIdentity(cLeft, y, op2) {
				out = append(out, y)
				removed++
				i += 2
				continue
			}
		}
		out = append(out, in[i])
	}
	return out, removed
}

// isRightIdentity matches [X, Const, Op]: C+0, C-0, C*1, C/1.
func isRightIdentity(x, c, op lir.Instr) bool {
	k := classify(c)
	if k == notConst {
		return false
	}
	switch op.Op {
	case addOpFor(k), subOpFor(k):
		return isZero(c, k)
	case mulOpFor(k):
		return isOne(c, k)
	case divOpFor(k):
		return isOne(c, k)
	}
	return false
}

// isLeftIdentity matches [Const, Y, Op]: 0+C, 1*C. (Sub/Div are not
// commutative, so 0-C and 1/C are not identities and are left alone.)
func isLeftIdentity(c, y, op lir.Instr) bool {
	k := classify(c)
	if k == notConst {
		return false
	}
	switch op.Op {
	case addOpFor(k):
		return isZero(c, k)
	case mulOpFor(k):
		return isOne(c, k)
	}
	return false
}
