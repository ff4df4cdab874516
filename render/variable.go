package render

import (
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/relation"
)

// equalCollections reports whether a and b hold exactly the same
// (tuple, weight) entries — the convergence test for the fixed-point
// loop in Install (spec §4.6, "iteration continues until no local
// variable's collection changes").
func equalCollections(a, b *relation.Collection) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.ForEach(func(tuple datum.Tuple, diff int64) {
		if b.Weight(tuple) != diff {
			equal = false
		}
	})
	return equal
}
