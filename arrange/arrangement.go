package arrange

import (
	"crypto/sha1"
	"fmt"
	"sync/atomic"

	"github.com/wbrown/flowbase/datum"
)

// Arrangement is a ref-counted handle onto one namespace of a shared
// Engine: the incrementally maintained, sorted (key, value) -> weight
// index a plan's cached results live in (spec §4.4). Multiple queries
// that import the same plan at the same keys share one Arrangement
// instance instead of recomputing or re-storing it.
type Arrangement struct {
	engine   *Engine
	prefix   []byte
	keyArity int
	refs     int64
}

// namespace derives a stable, collision-resistant key prefix from a plan's
// structural cache key and its key-column set, so independently
// constructed but structurally identical (plan, keys) pairs land in the
// same Badger namespace.
func namespace(planKey string, keys []int) []byte {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%v", planKey, keys)
	sum := h.Sum(nil)
	return append([]byte{0x01}, sum...)
}

func newArrangement(engine *Engine, planKey string, keys []int) *Arrangement {
	return &Arrangement{
		engine:   engine,
		prefix:   namespace(planKey, keys),
		keyArity: len(keys),
		refs:     1,
	}
}

// Retain increments the reference count, returning the same Arrangement
// for chaining.
func (a *Arrangement) Retain() *Arrangement {
	atomic.AddInt64(&a.refs, 1)
	return a
}

// Release decrements the reference count and, once it reaches zero,
// deletes the underlying namespace from the Engine. Returns true if this
// call actually freed the namespace.
func (a *Arrangement) Release() (bool, error) {
	if atomic.AddInt64(&a.refs, -1) > 0 {
		return false, nil
	}
	return true, a.engine.DeleteNamespace(a.prefix)
}

// MergeDiff applies one update into the arrangement at the given logical
// time (spec §3 "((key, value), time, diff) triples").
func (a *Arrangement) MergeDiff(key, val datum.Tuple, timeNanos int64, diff int64) error {
	if len(key) != a.keyArity {
		return fmt.Errorf("arrange: key arity %d does not match arrangement key arity %d", len(key), a.keyArity)
	}
	return a.engine.MergeDiff(a.prefix, key, val, timeNanos, diff)
}

// Rows returns every (key, value, diff) row whose accumulated weight as
// of asOf is non-zero — the arrangement's contents at logical time asOf,
// not merely its current contents (spec §8 Scenario D: a query "as of" an
// earlier time must not observe a later retraction, or vice versa).
func (a *Arrangement) Rows(asOf int64) ([]Row, error) {
	return a.engine.Scan(a.prefix, a.keyArity, asOf)
}

// KeyArity reports the number of columns the arrangement is indexed by.
func (a *Arrangement) KeyArity() int { return a.keyArity }
