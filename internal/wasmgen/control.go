package wasmgen

import (
	"bytes"

	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

// splitBlocks partitions a function's flat instruction stream at OpLabel
// markers. The entry block is forced to dispatch index 0 regardless of its
// position in Body, since wasmgen's dispatch loop always starts execution
// there.
func splitBlocks(fn *lir.Func) ([]ids.BlockId, map[ids.BlockId][]lir.Instr) {
	var order []ids.BlockId
	bodies := make(map[ids.BlockId][]lir.Instr)
	var cur ids.BlockId
	var have bool
	for _, instr := range fn.Body {
		if instr.Op == lir.OpLabel {
			cur = instr.Block
			have = true
			order = append(order, cur)
			continue
		}
		if !have {
			continue
		}
		bodies[cur] = append(bodies[cur], instr)
	}
	// Move EntryBlock to the front so dispatch index 0 is the real entry.
	for i, b := range order {
		if b == fn.EntryBlock && i != 0 {
			order[0], order[i] = order[i], order[0]
			break
		}
	}
	return order, bodies
}

// funcEncoder translates one lir.Func's flat OpLabel/OpBr/OpBrIf stream
// into structured WASM control flow using a single dispatch loop: nested
// blocks (one per basic block, innermost = dispatch index 0) wrap a
// br_table keyed on a synthetic __wasm_bb local, all inside one outer
// loop. This handles any CFG shape — reducible or not — without a
// Relooper-style structural analysis, at the cost of one extra local and
// one indirect branch per block transition.
type funcEncoder struct {
	l          *layout
	fn         *lir.Func
	blockOrder []ids.BlockId
	blockIdx   map[ids.BlockId]int
	bbLocal    int

	// labels is the stack of open block/loop constructs, innermost last,
	// used to compute relative branch depths the way a real assembler
	// would track them.
	labels []string
}

func encodeFunc(l *layout, fn *lir.Func) ([]byte, *Error) {
	order, bodies := splitBlocks(fn)
	if len(order) == 0 {
		return withSizePrefix(func(buf *bytes.Buffer) {
			putULEB128(buf, 0)
			buf.WriteByte(0x0B)
		}), nil
	}

	idx := make(map[ids.BlockId]int, len(order))
	for i, b := range order {
		idx[b] = i
	}
	e := &funcEncoder{l: l, fn: fn, blockOrder: order, blockIdx: idx, bbLocal: len(fn.Locals)}

	var code bytes.Buffer
	// __wasm_bb := 0 (dispatch index of the entry block)
	code.WriteByte(0x41) // i32.const
	putSLEB128(&code, 0)
	code.WriteByte(0x21) // local.set
	putULEB128(&code, uint64(e.bbLocal))

	e.push("top")
	code.WriteByte(0x03) // loop
	code.WriteByte(0x40) // blocktype: empty

	n := len(order)
	for k := n - 1; k >= 0; k-- {
		e.push(blockLabel(k))
		code.WriteByte(0x02) // block
		code.WriteByte(0x40)
	}

	// br_table dispatch, innermost position (depth 0 = block for index 0).
	code.WriteByte(0x20) // local.get
	putULEB128(&code, uint64(e.bbLocal))
	code.WriteByte(0x0E) // br_table
	putULEB128(&code, uint64(n))
	for k := 0; k < n; k++ {
		putULEB128(&code, uint64(e.depthOf(blockLabel(k))))
	}
	putULEB128(&code, uint64(e.depthOf(blockLabel(n-1)))) // default: clamp to last

	for k := 0; k < n; k++ {
		code.WriteByte(0x0B) // end of block k
		e.pop()
		if err := e.encodeBlock(&code, k, bodies[order[k]]); err != nil {
			return nil, err
		}
	}
	code.WriteByte(0x0B) // end of loop
	e.pop()
	code.WriteByte(0x00) // unreachable: every block leaves through br or return
	code.WriteByte(0x0B) // end of function body

	return finishBody(fn, code.Bytes()), nil
}

func blockLabel(k int) string { return "b" + itoaDec(int32(k)) }

func (e *funcEncoder) push(name string) { e.labels = append(e.labels, name) }
func (e *funcEncoder) pop()             { e.labels = e.labels[:len(e.labels)-1] }

// depthOf returns the branch depth of name relative to the innermost
// currently-open construct (depth 0 = the construct just opened).
func (e *funcEncoder) depthOf(name string) int {
	for i := len(e.labels) - 1; i >= 0; i-- {
		if e.labels[i] == name {
			return len(e.labels) - 1 - i
		}
	}
	return 0
}

func (e *funcEncoder) jumpTo(buf *bytes.Buffer, target ids.BlockId) {
	k, ok := e.blockIdx[target]
	if !ok {
		k = 0
	}
	buf.WriteByte(0x41) // i32.const
	putSLEB128(buf, int64(k))
	buf.WriteByte(0x21) // local.set
	putULEB128(buf, uint64(e.bbLocal))
	buf.WriteByte(0x0C) // br
	putULEB128(buf, uint64(e.depthOf("top")))
}

func (e *funcEncoder) encodeBlock(buf *bytes.Buffer, k int, instrs []lir.Instr) *Error {
	for _, instr := range instrs {
		if err := e.encodeInstr(buf, instr); err != nil {
			return err
		}
	}
	return nil
}
