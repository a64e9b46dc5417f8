// Package cfg builds a control-flow graph from a lowered HIR function (C5
// of spec.md §4.2). Nodes are HIR statement/terminator positions; edges
// follow the successor relation each terminator implies. The borrow
// checker (internal/borrow) runs its dataflow passes directly over this
// graph.
package cfg

import (
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// NodeKind classifies a CFG node (spec.md §4.2).
type NodeKind uint8

const (
	KindStatement NodeKind = iota
	KindBranch
	KindLoopHeader
	KindFunctionEntry
	KindFunctionExit
)

// Pos locates a node within its owning HIR block: either a statement index
// or the block's terminator (StmtIndex == -1).
type Pos struct {
	Block     ids.BlockId
	StmtIndex int // -1 for the block's terminator
}

// IsTerminator reports whether p addresses a block's terminator rather than
// one of its statements.
func (p Pos) IsTerminator() bool { return p.StmtIndex < 0 }

// Node is one CFG node: a statement or terminator position plus its edges.
type Node struct {
	ID           ids.NodeId
	Kind         NodeKind
	Pos          Pos
	Predecessors []ids.NodeId
	Successors   []ids.NodeId
}

// Graph is the control-flow graph of one HIR function.
type Graph struct {
	Func        *hir.Func
	Nodes       []Node
	EntryPoints []ids.NodeId
	ExitPoints  []ids.NodeId

	// blockFirst/blockLast map a block to the NodeId of its first and last
	// (terminator) node, used when wiring inter-block edges.
	blockFirst []ids.NodeId
	blockLast  []ids.NodeId
}

// NodeByID returns a pointer to the node with the given id, or nil.
func (g *Graph) NodeByID(id ids.NodeId) *Node {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil
	}
	return &g.Nodes[id]
}

func (g *Graph) addNode(n Node) ids.NodeId {
	n.ID = ids.NodeId(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	return n.ID
}

func (g *Graph) connect(from, to ids.NodeId) {
	if from == ids.NoNodeId || to == ids.NoNodeId {
		return
	}
	fn := g.NodeByID(from)
	tn := g.NodeByID(to)
	fn.Successors = append(fn.Successors, to)
	tn.Predecessors = append(tn.Predecessors, from)
}

// Build constructs the CFG for fn.
func Build(fn *hir.Func) *Graph {
	g := &Graph{Func: fn}
	g.blockFirst = make([]ids.NodeId, len(fn.Blocks))
	g.blockLast = make([]ids.NodeId, len(fn.Blocks))
	for i := range g.blockFirst {
		g.blockFirst[i] = ids.NoNodeId
		g.blockLast[i] = ids.NoNodeId
	}

	// loopHeaders collects block ids that are the back-edge target of some
	// Continue terminator — the structural signature of a loop header this
	// builder produces (internal/hir's lowerLoop always routes Continue at
	// the header, never anywhere else).
	loopHeaders := make(map[ids.BlockId]bool)
	for bi := range fn.Blocks {
		t := fn.Blocks[bi].Terminator
		if t.Kind == hir.TermContinue {
			loopHeaders[t.LoopTarget] = true
		}
	}

	// First pass: create one node per statement and one per terminator,
	// within each block in order, recording the first/last node per block.
	for bi := range fn.Blocks {
		blk := &fn.Blocks[bi]
		bid := blk.ID

		for si := range blk.Statements {
			n := Node{Kind: KindStatement, Pos: Pos{Block: bid, StmtIndex: si}}
			id := g.addNode(n)
			if g.blockFirst[bid] == ids.NoNodeId {
				g.blockFirst[bid] = id
			}
			if si > 0 {
				g.connect(g.lastStmtNode(bid, si-1), id)
			}
		}

		termKind := terminatorNodeKind(blk.Terminator.Kind)
		termNode := Node{Kind: termKind, Pos: Pos{Block: bid, StmtIndex: -1}}
		tid := g.addNode(termNode)
		if g.blockFirst[bid] == ids.NoNodeId {
			g.blockFirst[bid] = tid
		} else {
			last := g.lastStmtNode(bid, len(blk.Statements)-1)
			g.connect(last, tid)
		}
		g.blockLast[bid] = tid

		if loopHeaders[bid] {
			g.NodeByID(g.blockFirst[bid]).Kind = KindLoopHeader
		}
	}

	if len(fn.Blocks) > 0 {
		entryFirst := g.blockFirst[fn.Entry]
		if n := g.NodeByID(entryFirst); n != nil {
			n.Kind = KindFunctionEntry
		}
		g.EntryPoints = append(g.EntryPoints, entryFirst)
	}

	// Second pass: wire inter-block edges from each block's terminator.
	for bi := range fn.Blocks {
		blk := &fn.Blocks[bi]
		tid := g.blockLast[blk.ID]
		t := blk.Terminator
		switch t.Kind {
		case hir.TermReturn, hir.TermPanic:
			g.ExitPoints = append(g.ExitPoints, tid)
		case hir.TermJump:
			g.connect(tid, g.blockFirst[t.JumpTarget])
		case hir.TermIf:
			g.connect(tid, g.blockFirst[t.IfThen])
			g.connect(tid, g.blockFirst[t.IfElse])
		case hir.TermBreak, hir.TermContinue:
			g.connect(tid, g.blockFirst[t.LoopTarget])
		case hir.TermMatch:
			for _, arm := range t.MatchArms {
				g.connect(tid, g.blockFirst[arm.Target])
			}
			if t.MatchDefault != ids.NoBlockId {
				g.connect(tid, g.blockFirst[t.MatchDefault])
			}
		}
	}

	return g
}

// lastStmtNode returns the NodeId of the statement at index idx within
// block bid as an offset from blockFirst, since nodes are appended in
// per-block textual order.
func (g *Graph) lastStmtNode(bid ids.BlockId, idx int) ids.NodeId {
	if idx < 0 {
		return g.blockFirst[bid]
	}
	return g.blockFirst[bid] + ids.NodeId(idx)
}

func terminatorNodeKind(k hir.TermKind) NodeKind {
	switch k {
	case hir.TermIf, hir.TermMatch:
		return KindBranch
	case hir.TermReturn:
		return KindFunctionExit
	default:
		return KindStatement
	}
}
