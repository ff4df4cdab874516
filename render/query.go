package render

import (
	"fmt"

	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// MaxFixedPointIterations bounds the naive recompute-per-iteration fixed
// point loop, guarding against a query whose rules aren't actually
// monotonic (and so would never converge) from hanging the worker
// forever.
const MaxFixedPointIterations = 10_000

// Published is one collection produced by a query's AddPublish plans,
// ready to be written back into the TraceManager.
type Published struct {
	Plan *plan.Plan
	Keys []int
	Rows []arrange.Row
}

// Install renders q against the currently maintained traces as of asOf,
// running the iterative subscope's fixed-point loop to resolve every
// recursive rule, and returns the collections named by q.Publish (spec
// §4.6). engine backs the ephemeral Stash this single installation uses;
// it is discarded (and any local-only arrangements released) once
// Install returns. Every imported trace is read as of asOf and every
// published result is handed back to be written at asOf, so a query's
// view of the world is pinned to one logical time throughout (spec §8
// Scenario D).
func Install(q *plan.Query, traces *arrange.TraceManager, engine *arrange.Engine, asOf int64) ([]Published, error) {
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, asOf)

	// Import phase: materialize every imported trace's contents as of
	// asOf as a named source Collection.
	for _, imp := range q.Imports {
		arr, ok := traces.Get(imp.Plan, imp.Keys)
		if !ok {
			return nil, fmt.Errorf("render: failed to find import %s", describeSource(imp.Plan))
		}
		rows, err := arr.Rows(asOf)
		if err != nil {
			return nil, fmt.Errorf("render: reading import %s: %w", describeSource(imp.Plan), err)
		}
		name := sourceName(imp.Plan)
		coll := relation.New()
		for _, row := range rows {
			coll.Add(datum.Concat(row.Key, row.Val), row.Diff)
		}
		ctx.Sources[name] = coll
	}

	// Fixed-point phase: every rule starts bound to the empty collection,
	// and is repeatedly re-rendered from the current bindings until no
	// rule's bound collection changes between iterations (spec §4.6).
	for _, rule := range q.Rules {
		ctx.Locals[rule.Name] = relation.New()
	}

	for iteration := 0; ; iteration++ {
		if iteration >= MaxFixedPointIterations {
			return nil, fmt.Errorf("render: fixed point did not converge within %d iterations", MaxFixedPointIterations)
		}

		stash.ResetEphemeral()
		next := make(map[string]*relation.Collection, len(q.Rules))
		for _, rule := range q.Rules {
			c, err := Render(ctx, rule.Plan)
			if err != nil {
				return nil, fmt.Errorf("render: rule %q: %w", rule.Name, err)
			}
			next[rule.Name] = c
		}

		converged := true
		for name, c := range next {
			if !equalCollections(ctx.Locals[name], c) {
				converged = false
			}
		}
		ctx.Locals = next
		if converged {
			break
		}
	}

	// One final render pass over the converged bindings renders every
	// publish plan, including any identical to one of the rules.
	stash.ResetEphemeral()

	published := make([]Published, 0, len(q.Publish))
	for _, pub := range q.Publish {
		c, err := Render(ctx, pub.Plan)
		if err != nil {
			return nil, fmt.Errorf("render: publish %s: %w", describeSource(pub.Plan), err)
		}
		keys := pub.Keys
		if keys == nil {
			keys = plan.DefaultKeys(pub.Plan.Arity)
		}
		vals := make([]int, 0, pub.Plan.Arity-len(keys))
		isKey := make(map[int]bool, len(keys))
		for _, k := range keys {
			isKey[k] = true
		}
		for i := 0; i < pub.Plan.Arity; i++ {
			if !isKey[i] {
				vals = append(vals, i)
			}
		}

		var rows []arrange.Row
		for _, entry := range c.Sorted() {
			rows = append(rows, arrange.Row{
				Key:  entry.Tuple.Project(keys),
				Val:  entry.Tuple.Project(vals),
				Diff: entry.Diff,
			})
		}
		published = append(published, Published{Plan: pub.Plan, Keys: keys, Rows: rows})
	}

	return published, nil
}

func sourceName(p *plan.Plan) string {
	if p.Kind == plan.NodeSource {
		return p.Name
	}
	return p.Key()
}

func describeSource(p *plan.Plan) string {
	if p.Kind == plan.NodeSource {
		return fmt.Sprintf("Source(%s)", p.Name)
	}
	return p.Key()
}
