package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// runB2 is the forward worklist dataflow over loan sets (spec.md §4.3 B2).
// The lattice is the powerset of loans ordered by inclusion; Gens is
// monotone and Defs is applied before merging with successors, so the
// analysis is guaranteed to reach a fixed point.
func (c *checker) runB2() {
	n := len(c.g.Nodes)
	if n == 0 {
		return
	}
	maxIterations := 10 * n
	iterations := 0

	queue := make([]ids.NodeId, 0, n)
	queued := make([]bool, n)
	for i := 0; i < n; i++ {
		queue = append(queue, ids.NodeId(i))
		queued[i] = true
	}

	for len(queue) > 0 {
		iterations++
		if iterations > maxIterations {
			c.reportInternal(queue[0], "borrow dataflow exceeded %d iterations without converging", maxIterations)
			return
		}

		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		node := c.g.NodeByID(id)
		var in LoanSet
		for i, pred := range node.Predecessors {
			if i == 0 {
				in = c.liveOut[pred].clone()
			} else {
				in = in.union(c.liveOut[pred])
			}
		}
		if in == nil {
			in = LoanSet{}
		}
		c.liveIn[id] = in

		defsOut := in.clone()
		for lid := range defsOut {
			loan := c.loan(lid)
			if loan == nil {
				continue
			}
			for _, d := range c.defs[id] {
				if place.Overlaps(loan.Place, d) {
					delete(defsOut, lid)
					break
				}
			}
		}
		for _, g := range c.gens[id] {
			defsOut[g] = true
		}

		if !defsOut.equal(c.liveOut[id]) {
			c.liveOut[id] = defsOut
			for _, succ := range node.Successors {
				if !queued[succ] {
					queue = append(queue, succ)
					queued[succ] = true
				}
			}
		}
	}
}
