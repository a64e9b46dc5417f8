package borrow

import (
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// ValidateParamLifetimes re-checks the invariant spec.md §4.3 "Parameter
// lifetimes" names for parameter-rooted places: the recorded last use (the
// node past which the place is absent from PlaceOut) must in fact be the
// highest-numbered node among all of that place's uses on any path. A
// violation here means B3/B4 disagree with the raw use table, which is a
// checker bug rather than a user-facing borrow error, so it is reported as
// Internal.
func (c *checker) ValidateParamLifetimes() {
	paramUses := map[string][]ids.NodeId{}
	for i := range c.g.Nodes {
		id := ids.NodeId(i)
		for _, u := range c.uses[id] {
			if u.Root.Kind != place.RootParam {
				continue
			}
			key := u.String()
			paramUses[key] = append(paramUses[key], id)
		}
	}
	for key, nodeIDs := range paramUses {
		maxNode := nodeIDs[0]
		for _, n := range nodeIDs {
			if n > maxNode {
				maxNode = n
			}
		}
		if _, stillLive := c.placeOut[maxNode][key]; stillLive {
			c.reportInternal(maxNode, "parameter place %s recorded live-out past its maximum use point", key)
		}
	}
}
