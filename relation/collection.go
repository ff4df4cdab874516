// Package relation implements Collection, the in-memory multiset of
// (tuple, diff) updates every plan operator consumes and produces (spec
// §3 "a collection is a multiset of (tuple, diff) pairs"). It stands in
// for the real differential-dataflow Collection<S, Vec<V>, Diff> type the
// teacher's lineage would use, accumulated rather than streamed per
// §4 of the expanded spec.
package relation

import (
	"sort"

	"github.com/wbrown/flowbase/datum"
)

// Collection is the accumulated net weight of every tuple produced so far
// at the current logical time: a consolidated multiset where a zero
// weight means "absent". Operators render a Collection from their
// children's Collections rather than processing a single update at a
// time, which is the simplification the expanded spec's engineering
// model adopts in place of true incremental streaming (see design notes).
type Collection struct {
	weights map[string]int64
	tuples  map[string]datum.Tuple
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{weights: make(map[string]int64), tuples: make(map[string]datum.Tuple)}
}

func keyFor(t datum.Tuple) string { return string(datum.EncodeTuple(t)) }

// Add merges diff into t's accumulated weight, dropping the entry
// entirely once its weight returns to zero.
func (c *Collection) Add(t datum.Tuple, diff int64) {
	k := keyFor(t)
	total := c.weights[k] + diff
	if total == 0 {
		delete(c.weights, k)
		delete(c.tuples, k)
		return
	}
	c.weights[k] = total
	c.tuples[k] = t
}

// Merge folds every entry of other into c.
func (c *Collection) Merge(other *Collection) {
	other.ForEach(func(t datum.Tuple, diff int64) {
		c.Add(t, diff)
	})
}

// ForEach visits every non-zero-weighted tuple, in an unspecified order.
func (c *Collection) ForEach(f func(t datum.Tuple, diff int64)) {
	for k, w := range c.weights {
		f(c.tuples[k], w)
	}
}

// Weight returns t's current accumulated weight (zero if absent).
func (c *Collection) Weight(t datum.Tuple) int64 {
	return c.weights[keyFor(t)]
}

// Len returns the number of distinct tuples with non-zero weight.
func (c *Collection) Len() int { return len(c.weights) }

// Sorted returns every (tuple, weight) pair ordered by the tuple's String()
// rendering, for
// deterministic output (query results, Inspect, table rendering).
func (c *Collection) Sorted() []Entry {
	out := make([]Entry, 0, len(c.weights))
	for k, w := range c.weights {
		out = append(out, Entry{Tuple: c.tuples[k], Diff: w})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tuple.String() < out[j].Tuple.String()
	})
	return out
}

// Entry is one (tuple, accumulated weight) row of a Collection.
type Entry struct {
	Tuple datum.Tuple
	Diff  int64
}
