// Package render implements the plan algebra's evaluation semantics: given
// a Plan and the data it reads from, produce the Collection it denotes
// (spec §4.5). It is the accumulated-recompute analogue of the teacher's
// lineage's incremental dataflow rendering.
package render

import (
	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/relation"
)

// Context carries everything Render needs besides the Plan itself: the
// Stash memoizing already-rendered Collections and arrangements for this
// construction, the named source relations visible to Source plans, the
// current iteration's bindings for Local (recursive variable) plans, and
// the logical time this construction reads and writes arrangements as of
// (spec §8 Scenario D: a query must see exactly the updates at or before
// its own time, nothing later).
type Context struct {
	Stash   *arrange.Stash
	Sources map[string]*relation.Collection
	Locals  map[string]*relation.Collection
	AsOf    int64
}

// NewContext constructs a rendering context over stash, with no sources or
// locals bound yet, reading and writing any local arrangements as of asOf.
func NewContext(stash *arrange.Stash, asOf int64) *Context {
	return &Context{
		Stash:   stash,
		Sources: make(map[string]*relation.Collection),
		Locals:  make(map[string]*relation.Collection),
		AsOf:    asOf,
	}
}
