package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// runB5 detects conflicting/illegal borrows at every node, using the loan
// sets B2 computed and the place liveness B3/B4 refined (spec.md §4.3 B5).
// All conflicts across the function are reported before the function is
// failed (spec.md §7 propagation policy) — this pass never returns early on
// the first diagnostic.
func (c *checker) runB5() {
	for i := range c.g.Nodes {
		id := ids.NodeId(i)
		c.checkOverlapConflicts(id)
		c.checkBorrowAcrossMove(id)
		c.checkUseAfterMove(id)
	}
}

func (c *checker) checkOverlapConflicts(id ids.NodeId) {
	active := c.liveOut[id]
	loanIDs := make([]ids.LoanId, 0, len(active))
	for lid := range active {
		loanIDs = append(loanIDs, lid)
	}
	for i := 0; i < len(loanIDs); i++ {
		a := c.loan(loanIDs[i])
		if a == nil || (a.Kind != Shared && a.Kind != Mutable) {
			continue
		}
		for j := i + 1; j < len(loanIDs); j++ {
			b := c.loan(loanIDs[j])
			if b == nil || (b.Kind != Shared && b.Kind != Mutable) {
				continue
			}
			if !place.Overlaps(a.Place, b.Place) {
				continue
			}
			switch {
			case a.Kind == Mutable && b.Kind == Mutable:
				c.reportConflictingMutableBorrows(id, a.Place.String())
			case a.Kind == Mutable || b.Kind == Mutable:
				c.reportConflictingSharedMutableBorrow(id, a.Place.String())
			}
		}
	}
}

// checkBorrowAcrossMove flags a move that happens while another active loan
// still observes the same or an ancestor place.
func (c *checker) checkBorrowAcrossMove(id ids.NodeId) {
	for _, g := range c.gens[id] {
		mover := c.loan(g)
		if mover == nil || (mover.Kind != Move && mover.Kind != CandidateMove) {
			continue
		}
		for lid := range c.liveIn[id] {
			if lid == g {
				continue
			}
			other := c.loan(lid)
			if other == nil || (other.Kind != Shared && other.Kind != Mutable) {
				continue
			}
			if place.Overlaps(mover.Place, other.Place) {
				c.reportBorrowAcrossMove(id, mover.Place.String())
			}
		}
	}
}

// checkUseAfterMove flags a read of a place already consumed by an
// unredefined Move loan reaching this node.
func (c *checker) checkUseAfterMove(id ids.NodeId) {
	for _, u := range c.uses[id] {
		for lid := range c.liveIn[id] {
			loan := c.loan(lid)
			if loan == nil || loan.Kind != Move {
				continue
			}
			if loan.Origin == id {
				continue
			}
			if place.Overlaps(loan.Place, u) {
				c.reportUseAfterMove(id, u.String())
			}
		}
	}
}
