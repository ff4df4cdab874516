package render

import (
	"fmt"

	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// renderJoin equi-joins the two child collections on p.Keys, producing a
// tuple for every pair whose key columns match, weighted by the product of
// the two sides' weights (spec §4.2 "Join"). The right side is indexed
// into a Stash-cached Arrangement exactly as plan/join.rs arranges its
// inputs before probing, so a right-hand plan joined against repeatedly
// within one construction is only ever arranged once.
func renderJoin(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	left, err := Render(ctx, p.Child1)
	if err != nil {
		return nil, err
	}

	leftKeys := make([]int, len(p.Keys))
	rightKeys := make([]int, len(p.Keys))
	for i, k := range p.Keys {
		leftKeys[i] = k.Left
		rightKeys[i] = k.Right
	}

	leftOnly := nonKeyColumns(p.Child1.Arity, leftKeys)
	rightOnly := nonKeyColumns(p.Child2.Arity, rightKeys)

	arr, err := arrangedChild(ctx, p.Child2, rightKeys, rightOnly)
	if err != nil {
		return nil, err
	}
	rows, err := arr.Rows(ctx.AsOf)
	if err != nil {
		return nil, fmt.Errorf("render: reading join arrangement: %w", err)
	}

	index := make(map[string][]indexedRow, len(rows))
	for _, row := range rows {
		k := string(datum.EncodeTuple(row.Key))
		index[k] = append(index[k], indexedRow{val: row.Val, diff: row.Diff})
	}

	// Output column order is key ∥ child1 non-key columns (ascending) ∥
	// child2 non-key columns (ascending) (spec §4.5.2), not child1's
	// entire original tuple followed by child2's value: a key column
	// that isn't also child1's leading column(s) must not survive twice
	// or in the wrong position.
	out := relation.New()
	for _, l := range left.Sorted() {
		key := l.Tuple.Project(leftKeys)
		k := string(datum.EncodeTuple(key))
		lVal := l.Tuple.Project(leftOnly)
		for _, r := range index[k] {
			joined := datum.Concat(key, lVal, r.val)
			out.Add(joined, l.Diff*r.diff)
		}
	}
	return out, nil
}

type indexedRow struct {
	val  datum.Tuple
	diff int64
}

func nonKeyColumns(arity int, keys []int) []int {
	keySet := make(map[int]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	out := make([]int, 0, arity-len(keys))
	for i := 0; i < arity; i++ {
		if !keySet[i] {
			out = append(out, i)
		}
	}
	return out
}

// arrangedChild returns the Stash-cached arrangement of child indexed by
// keys, rendering and indexing it the first time it is requested within
// this construction.
func arrangedChild(ctx *Context, child *plan.Plan, keys, vals []int) (*arrange.Arrangement, error) {
	if arr, ok := ctx.Stash.GetLocal(child, keys); ok {
		return arr, nil
	}
	coll, err := Render(ctx, child)
	if err != nil {
		return nil, err
	}
	arr := ctx.Stash.NewLocalArrangement(child, keys)
	var mergeErr error
	coll.ForEach(func(tuple datum.Tuple, diff int64) {
		if mergeErr != nil {
			return
		}
		mergeErr = arr.MergeDiff(tuple.Project(keys), tuple.Project(vals), ctx.AsOf, diff)
	})
	if mergeErr != nil {
		return nil, fmt.Errorf("render: arranging join input: %w", mergeErr)
	}
	ctx.Stash.SetLocal(child, keys, arr)
	return arr, nil
}
