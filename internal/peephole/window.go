package peephole

import "github.com/nyejames/beanstalk-sub005/internal/lir"

// applyPeepholes implements spec.md §4.5 pass 3 over adjacent instruction
// pairs: `LocalGet(x); LocalSet(x)` erases (a value is loaded and
// immediately stored back where it came from), `LocalSet(x); LocalGet(x)`
// becomes `LocalTee(x)` (store-then-reload collapses to tee), and
// `<const>; Drop` erases (a pushed constant that is immediately discarded).
func applyPeepholes(in []lir.Instr) ([]lir.Instr, int) {
	out := make([]lir.Instr, 0, len(in))
	applied := 0
	for i := 0; i < len(in); i++ {
		if i+1 < len(in) {
			a, b := in[i], in[i+1]
			if a.Op == lir.OpLocalGet && b.Op == lir.OpLocalSet && a.Local == b.Local {
				applied++
				i++
				continue
			}
			if a.Op == lir.OpLocalSet && b.Op == lir.OpLocalGet && a.Local == b.Local {
				out = append(out, lir.Instr{Op: lir.OpLocalTee, Local: a.Local})
				applied++
				i++
				continue
			}
			if classify(a) != notConst && b.Op == lir.OpDrop {
				applied++
				i++
				continue
			}
		}
		out = append(out, in[i])
	}
	return out, applied
}
