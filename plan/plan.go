// Package plan implements the immutable, hashable plan algebra: the tree
// describing how a relation is derived from sources, locals, and relational
// operators (spec §3-4.2).
package plan

import (
	"fmt"

	"github.com/wbrown/flowbase/datum"
)

// NodeKind discriminates the PlanNode variants from spec §3.
type NodeKind uint8

const (
	NodeSource NodeKind = iota
	NodeLocal
	NodeMap
	NodeFilter
	NodeDistinct
	NodeConcat
	NodeConsolidate
	NodeNegate
	NodeJoin
	NodeMultiwayJoin
	NodeInspect
)

func (k NodeKind) String() string {
	switch k {
	case NodeSource:
		return "Source"
	case NodeLocal:
		return "Local"
	case NodeMap:
		return "Map"
	case NodeFilter:
		return "Filter"
	case NodeDistinct:
		return "Distinct"
	case NodeConcat:
		return "Concat"
	case NodeConsolidate:
		return "Consolidate"
	case NodeNegate:
		return "Negate"
	case NodeJoin:
		return "Join"
	case NodeMultiwayJoin:
		return "MultiwayJoin"
	case NodeInspect:
		return "Inspect"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// JoinKey pairs a column index from the left plan with one from the right
// plan, asserted equal by a Join node.
type JoinKey struct {
	Left, Right int
}

// Attr names a single (source index, column index) position, used by
// MultiwayJoin's equality classes and result projection.
type Attr struct {
	Source, Column int
}

// Plan is the immutable, hashable tree describing a derived relation. Arity
// is always the true output column count: the renderer trusts it completely
// when splitting tuples into key/value halves for arranging (spec §3 "Arity
// invariant").
//
// Plan is a tagged node rather than one struct per variant (which the
// original Rust used, as enum variants) because Go has no sum types; a
// single struct keeps structural-equality and hashing (Key()) centralized
// in one place instead of duplicated per node type.
type Plan struct {
	Arity int
	Kind  NodeKind

	// Source / Local
	Name string

	// Map
	Exprs []datum.Expression

	// Filter
	Pred Predicate

	// Distinct / Consolidate / Negate / Inspect single child, Inspect tag
	Child *Plan
	Tag   string

	// Concat
	Children []*Plan

	// Join
	Child1 *Plan
	Child2 *Plan
	Keys   []JoinKey

	// MultiwayJoin
	Sources    []*Plan
	Equalities [][]Attr
	Results    []Attr

	key string // memoized structural cache key, see hash.go
}

// Source constructs a leaf referencing an externally managed relation.
func Source(name string, arity int) *Plan {
	p := &Plan{Kind: NodeSource, Name: name, Arity: arity}
	p.key = computeKey(p)
	return p
}

// Local constructs a leaf referencing a variable bound within the enclosing
// query's fixed-point scope.
func Local(name string, arity int) *Plan {
	p := &Plan{Kind: NodeLocal, Name: name, Arity: arity}
	p.key = computeKey(p)
	return p
}

// Project retains only the values at the given column indices, built as a
// Map over projection expressions (spec §4.2 "project(indices)").
func (p *Plan) Project(indices []int) *Plan {
	exprs := make([]datum.Expression, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= p.Arity {
			panic(fmt.Sprintf("plan: project index %d out of range for arity %d", idx, p.Arity))
		}
		exprs[i] = datum.Proj(idx)
	}
	return p.Map(exprs)
}

// Map applies exprs per-tuple, producing an arity-len(exprs) relation.
func (p *Plan) Map(exprs []datum.Expression) *Plan {
	for _, e := range exprs {
		if e.MaxIndex() >= p.Arity {
			panic(fmt.Sprintf("plan: map expression %s reads column beyond child arity %d", e, p.Arity))
		}
	}
	out := &Plan{Kind: NodeMap, Arity: len(exprs), Exprs: exprs, Child: p}
	out.key = computeKey(out)
	return out
}

// Distinct reduces the collection to distinct tuples.
func (p *Plan) Distinct() *Plan {
	out := &Plan{Kind: NodeDistinct, Arity: p.Arity, Child: p}
	out.key = computeKey(out)
	return out
}

// Concat merges this plan with other; both must share arity.
func (p *Plan) Concat(other *Plan) *Plan {
	return Concatenate([]*Plan{p, other})
}

// Concatenate merges multiple plans, all of which must share arity.
func Concatenate(plans []*Plan) *Plan {
	if len(plans) == 0 {
		panic("plan: concat requires at least one child")
	}
	arity := plans[0].Arity
	for _, child := range plans {
		if child.Arity != arity {
			panic(fmt.Sprintf("plan: concat arity mismatch: %d vs %d", child.Arity, arity))
		}
	}
	out := &Plan{Kind: NodeConcat, Arity: arity, Children: plans}
	out.key = computeKey(out)
	return out
}

// Consolidate forces physical accumulation and coalescing; arity is
// unchanged (semantic identity).
func (p *Plan) Consolidate() *Plan {
	out := &Plan{Kind: NodeConsolidate, Arity: p.Arity, Child: p}
	out.key = computeKey(out)
	return out
}

// Negate flips every diff's sign.
func (p *Plan) Negate() *Plan {
	out := &Plan{Kind: NodeNegate, Arity: p.Arity, Child: p}
	out.key = computeKey(out)
	return out
}

// Filter retains tuples satisfying predicate.
func (p *Plan) Filter(predicate Predicate) *Plan {
	out := &Plan{Kind: NodeFilter, Arity: p.Arity, Pred: predicate, Child: p}
	out.key = computeKey(out)
	return out
}

// Join equi-joins this plan with other on the given column-index pairs.
// arity = p.Arity + other.Arity - len(keys); each pair (i,j) must reference
// valid columns in the respective side (spec §4.2 "Pairs (i,j) must satisfy
// i < p1.arity and j < p2.arity").
func (p *Plan) Join(other *Plan, keys []JoinKey) *Plan {
	for _, k := range keys {
		if k.Left < 0 || k.Left >= p.Arity {
			panic(fmt.Sprintf("plan: join left key %d out of range for arity %d", k.Left, p.Arity))
		}
		if k.Right < 0 || k.Right >= other.Arity {
			panic(fmt.Sprintf("plan: join right key %d out of range for arity %d", k.Right, other.Arity))
		}
	}
	out := &Plan{
		Kind:   NodeJoin,
		Arity:  p.Arity + other.Arity - len(keys),
		Child1: p,
		Child2: other,
		Keys:   keys,
	}
	out.key = computeKey(out)
	return out
}

// MultiwayJoin equi-joins n sources using equivalence classes of
// (source,column) attribute positions, projected to results.
func MultiwayJoin(sources []*Plan, equalities [][]Attr, results []Attr) *Plan {
	if len(sources) == 0 {
		panic("plan: multiway join requires at least one source")
	}
	for _, class := range equalities {
		for _, a := range class {
			validateAttr(a, sources)
		}
	}
	for _, r := range results {
		validateAttr(r, sources)
	}
	out := &Plan{
		Kind:       NodeMultiwayJoin,
		Arity:      len(results),
		Sources:    sources,
		Equalities: equalities,
		Results:    results,
	}
	out.key = computeKey(out)
	return out
}

func validateAttr(a Attr, sources []*Plan) {
	if a.Source < 0 || a.Source >= len(sources) {
		panic(fmt.Sprintf("plan: multiway join attribute references source %d of %d", a.Source, len(sources)))
	}
	src := sources[a.Source]
	if a.Column < 0 || a.Column >= src.Arity {
		panic(fmt.Sprintf("plan: multiway join attribute column %d out of range for source arity %d", a.Column, src.Arity))
	}
}

// Inspect prints each tuple prefixed by tag as a side effect, passing the
// collection through unchanged.
func (p *Plan) Inspect(tag string) *Plan {
	out := &Plan{Kind: NodeInspect, Arity: p.Arity, Tag: tag, Child: p}
	out.key = computeKey(out)
	return out
}

// DefaultKeys returns the identity key-column set [0, 1, ..., arity-1],
// used whenever a caller passes nil keys to Stash/TraceManager lookups
// (spec §4.3 "get_local / get_trace normalize a None key argument").
func DefaultKeys(arity int) []int {
	out := make([]int, arity)
	for i := range out {
		out[i] = i
	}
	return out
}
