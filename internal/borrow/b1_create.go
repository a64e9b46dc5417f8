package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/cfg"
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// runB1 walks every CFG node and records the loans it creates (Gens) and
// the places it redefines (Defs), per spec.md §4.3 B1.
func (c *checker) runB1() {
	for i := range c.g.Nodes {
		n := &c.g.Nodes[i]
		blk := c.fn.BlockByID(n.Pos.Block)
		if blk == nil {
			continue
		}
		if n.Pos.IsTerminator() {
			c.createLoansForTerminator(n, blk)
		} else {
			c.createLoansForStmt(n, blk, &blk.Statements[n.Pos.StmtIndex])
		}
	}
}

func (c *checker) recordGen(nodeID ids.NodeId, p place.Place, kind LoanKind) {
	lid := c.newLoan(p, kind, nodeID)
	c.gens[nodeID] = append(c.gens[nodeID], lid)
}

func (c *checker) recordUse(nodeID ids.NodeId, p place.Place) {
	c.uses[nodeID] = append(c.uses[nodeID], p)
}

func (c *checker) recordDef(nodeID ids.NodeId, p place.Place) {
	c.defs[nodeID] = append(c.defs[nodeID], p)
}

// genFromRefs creates Shared/Mutable loans for every place read by an
// expression, honoring explicit `&mut` markers (spec.md §4.3 B1 third
// bullet).
func (c *checker) genFromRefs(nodeID ids.NodeId, refs []loadRef) {
	for _, r := range refs {
		c.recordUse(nodeID, r.place)
		kind := Shared
		if r.mutable {
			kind = Mutable
		}
		c.recordGen(nodeID, r.place, kind)
	}
}

func (c *checker) createLoansForStmt(n *cfg.Node, blk *hir.Block, s *hir.Stmt) {
	id := n.ID
	switch s.Kind {
	case hir.StmtAssign:
		c.recordDef(id, s.AssignPlace)
		rhs := blk.ExprByID(s.AssignExpr)
		if rhs != nil && rhs.Kind == hir.ExprLoad {
			// A bare place-to-place assignment is a move candidate
			// (spec.md §4.3 B1 fourth bullet); refined to a real Move in
			// B4 if the source place is not live past this point.
			c.recordUse(id, rhs.Load)
			c.recordGen(id, rhs.Load, CandidateMove)
			return
		}
		c.genFromRefs(id, collectLoads(blk, s.AssignExpr))
	case hir.StmtCall:
		for _, a := range s.CallArgs {
			for _, r := range collectLoads(blk, a) {
				c.recordUse(id, r.place)
				kind := Shared
				if r.mutable || c.interner.IsHeapOwned(r.place.Type) {
					kind = Mutable
				}
				c.recordGen(id, r.place, kind)
			}
		}
		if s.CallResult != ids.NoLocalId {
			c.recordDef(id, place.Local(s.CallResult, ids.NoTypeId))
		}
	case hir.StmtDrop:
		c.recordUse(id, s.DropPlace)
	case hir.StmtStoreField:
		c.recordUse(id, s.StoreBase)
		c.recordDef(id, s.StoreBase)
		c.genFromRefs(id, collectLoads(blk, s.StoreValue))
	case hir.StmtExpr:
		c.genFromRefs(id, collectLoads(blk, s.Expr))
	}
}

func (c *checker) createLoansForTerminator(n *cfg.Node, blk *hir.Block) {
	id := n.ID
	t := &blk.Terminator
	switch t.Kind {
	case hir.TermIf:
		c.genFromRefs(id, collectLoads(blk, t.IfCond))
	case hir.TermMatch:
		c.recordUse(id, t.MatchScrutinee)
		c.recordGen(id, t.MatchScrutinee, Shared)
	case hir.TermReturn:
		c.genFromRefs(id, collectLoads(blk, t.ReturnExpr))
	case hir.TermJump:
		for _, a := range t.JumpArgs {
			c.genFromRefs(id, collectLoads(blk, a.Value))
			c.recordDef(id, place.Local(a.Target, ids.NoTypeId))
		}
	}
}
