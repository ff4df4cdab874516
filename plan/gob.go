package plan

import (
	"encoding/gob"

	"github.com/wbrown/flowbase/datum"
)

// init registers every concrete Expression and Predicate type with gob, so
// a Plan's Exprs and Pred interface fields survive the wire package's
// gob-framed Command envelopes (spec §6 "the encoding is ... self-
// delimiting"; the concrete wire format is an external-collaborator
// concern per spec §1, but the Plan tree it carries is this package's, so
// the registration lives here rather than in wire itself).
func init() {
	gob.Register(datum.Projection{})
	gob.Register(datum.Const{})
	gob.Register(ColumnEquals{})
	gob.Register(ColumnsEqual{})
	gob.Register(Not{})
	gob.Register(And{})
	gob.Register(Or{})
}

// Rehydrate recomputes p's memoized structural key, and every descendant's,
// after p has come back from a decoder that cannot see unexported fields
// (gob, notably): key is unexported precisely because callers are never
// meant to set it directly, but that also means it never survives a
// gob round-trip and must be rebuilt bottom-up exactly as the
// constructors would have built it (spec §9 "plan as hashable key").
func Rehydrate(p *Plan) *Plan {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case NodeMap, NodeFilter, NodeDistinct, NodeConsolidate, NodeNegate, NodeInspect:
		Rehydrate(p.Child)
	case NodeConcat:
		for _, c := range p.Children {
			Rehydrate(c)
		}
	case NodeJoin:
		Rehydrate(p.Child1)
		Rehydrate(p.Child2)
	case NodeMultiwayJoin:
		for _, s := range p.Sources {
			Rehydrate(s)
		}
	}
	p.key = computeKey(p)
	return p
}

// RehydrateQuery rehydrates every plan reachable from q's rules, imports,
// and publish lists.
func RehydrateQuery(q *Query) *Query {
	for _, r := range q.Rules {
		Rehydrate(r.Plan)
	}
	for _, imp := range q.Imports {
		Rehydrate(imp.Plan)
	}
	for _, pub := range q.Publish {
		Rehydrate(pub.Plan)
	}
	return q
}
