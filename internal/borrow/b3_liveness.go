package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/ids"
)

// runB3 computes backward place liveness (spec.md §4.3 B3), independent of
// the loan-set dataflow in B2: LiveOut[s] is the union of successors'
// LiveIn, and LiveIn[s] = Uses[s] ∪ (LiveOut[s] ∖ Defs[s]). The set of live
// places only ever shrinks along the complement lattice, so this also
// terminates monotonically.
func (c *checker) runB3() {
	n := len(c.g.Nodes)
	if n == 0 {
		return
	}

	queue := make([]ids.NodeId, 0, n)
	queued := make([]bool, n)
	for i := n - 1; i >= 0; i-- {
		queue = append(queue, ids.NodeId(i))
		queued[i] = true
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		node := c.g.NodeByID(id)
		var out PlaceSet
		for i, succ := range node.Successors {
			if i == 0 {
				out = c.placeIn[succ].clone()
			} else {
				out = out.union(c.placeIn[succ])
			}
		}
		if out == nil {
			out = PlaceSet{}
		}
		c.placeOut[id] = out

		in := make(PlaceSet, len(out))
		for k, v := range out {
			in[k] = v
		}
		for _, d := range c.defs[id] {
			delete(in, d.String())
		}
		for _, u := range c.uses[id] {
			in[u.String()] = u
		}

		if !in.equal(c.placeIn[id]) {
			c.placeIn[id] = in
			for _, pred := range node.Predecessors {
				if !queued[pred] {
					queue = append(queue, pred)
					queued[pred] = true
				}
			}
		}
	}
}
