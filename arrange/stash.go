package arrange

import (
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// Stash holds everything a single dataflow construction (one Query's
// iterative subscope) has rendered or imported so far, keyed by plan
// identity: rendered Collections, locally arranged indexes, and imported
// traces (spec §4.3, mirroring plan/mod.rs's Stash<S, V>). It is thrown
// away once the query finishes rendering; only what Query.AddPublish
// names survives into the TraceManager.
type Stash struct {
	engine      *Engine
	collections map[string]*relation.Collection
	local       map[string]map[string]*Arrangement
	trace       map[string]map[string]*Arrangement
}

// NewStash constructs an empty stash backed by engine for any local
// arrangements it needs to materialize. Callers should pass a fresh,
// short-lived Engine scoped to one query's rendering (never the
// long-lived TraceManager's engine): namespace() depends only on
// (plan key, key columns), so sharing an engine between a Stash and the
// TraceManager would let an ephemeral local arrangement collide with a
// published trace for the same plan.
func NewStash(engine *Engine) *Stash {
	return &Stash{
		engine:      engine,
		collections: make(map[string]*relation.Collection),
		local:       make(map[string]map[string]*Arrangement),
		trace:       make(map[string]map[string]*Arrangement),
	}
}

// GetCollection returns the memoized rendered Collection for p, if the
// renderer has already produced it during this construction.
func (s *Stash) GetCollection(p *plan.Plan) (*relation.Collection, bool) {
	c, ok := s.collections[p.Key()]
	return c, ok
}

// SetCollection memoizes p's rendered Collection, so a plan referenced
// from multiple places in the tree (a diamond) is only rendered once
// (spec §4.5, "render... MUST memoize by plan identity").
func (s *Stash) SetCollection(p *plan.Plan, c *relation.Collection) {
	s.collections[p.Key()] = c
}

func (s *Stash) getArranged(bucket map[string]map[string]*Arrangement, p *plan.Plan, keys []int) (*Arrangement, bool) {
	keys = normalizeKeys(p, keys)
	byKeys, ok := bucket[p.Key()]
	if !ok {
		return nil, false
	}
	arr, ok := byKeys[keysToString(keys)]
	return arr, ok
}

func (s *Stash) setArranged(bucket map[string]map[string]*Arrangement, p *plan.Plan, keys []int, arr *Arrangement) {
	keys = normalizeKeys(p, keys)
	byKeys, ok := bucket[p.Key()]
	if !ok {
		byKeys = make(map[string]*Arrangement)
		bucket[p.Key()] = byKeys
	}
	byKeys[keysToString(keys)] = arr
}

// GetLocal retrieves an arrangement rendered locally within this
// construction (e.g. a join's indexed input), keyed by plan and keys. A
// nil keys argument normalizes to the plan's identity key set.
func (s *Stash) GetLocal(p *plan.Plan, keys []int) (*Arrangement, bool) {
	return s.getArranged(s.local, p, keys)
}

// SetLocal binds a plan and keys to a locally rendered arrangement.
func (s *Stash) SetLocal(p *plan.Plan, keys []int, arr *Arrangement) {
	s.setArranged(s.local, p, keys, arr)
}

// GetTrace retrieves a trace imported from the TraceManager for this
// construction.
func (s *Stash) GetTrace(p *plan.Plan, keys []int) (*Arrangement, bool) {
	return s.getArranged(s.trace, p, keys)
}

// SetTrace binds a plan and keys to an imported trace arrangement.
func (s *Stash) SetTrace(p *plan.Plan, keys []int, arr *Arrangement) {
	s.setArranged(s.trace, p, keys, arr)
}

// ResetEphemeral clears the memoized collections and locally rendered
// arrangements between fixed-point iterations, while leaving imported
// traces untouched: each iteration must re-render every rule from its
// (possibly changed) Local bindings, so memoized results from the
// previous iteration cannot be reused, but the imported trace contents
// never change during a single Install call (spec §4.6).
func (s *Stash) ResetEphemeral() {
	for _, byKeys := range s.local {
		for _, arr := range byKeys {
			arr.Release()
		}
	}
	s.collections = make(map[string]*relation.Collection)
	s.local = make(map[string]map[string]*Arrangement)
}

// NewLocalArrangement allocates a fresh, stash-scoped arrangement over
// this stash's engine, suitable for binding with SetLocal.
func (s *Stash) NewLocalArrangement(p *plan.Plan, keys []int) *Arrangement {
	keys = normalizeKeys(p, keys)
	return newArrangement(s.engine, p.Key(), keys)
}
