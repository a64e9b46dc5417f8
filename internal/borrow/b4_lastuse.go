package borrow

// runB4 refines CandidateMove loans into real Moves wherever their place is
// not live-out of the node that created them — the principal optimization
// lever of spec.md §4.3 B4: a last use elides a copy and transfers
// ownership instead.
func (c *checker) runB4() {
	for i := range c.loans {
		l := &c.loans[i]
		if l.Kind != CandidateMove {
			continue
		}
		out := c.placeOut[l.Origin]
		if _, live := out[l.Place.String()]; !live {
			l.Kind = Move
		}
	}
}
