package render

import (
	"fmt"
	"sort"

	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// renderMultiwayJoin evaluates an n-way equi-join by desugaring it into a
// left-deep tree of binary Join plan nodes, one of the two strategies
// spec §9 explicitly permits as an alternative to a true worst-case-optimal
// join. Sources are folded in index order; at every step we track, for
// each original (source, column) attribute, which output column of the
// join-so-far currently holds it, so Equalities and Results (both
// expressed in terms of the original sources) can be translated into join
// keys and a final projection once the whole tree is built.
//
// Each binary Join reshuffles its child1's columns into key-columns-first,
// non-key-columns-ascending-second (spec §4.5.2), so every source already
// folded into `joined` must have its tracked column positions remapped
// after each step, not just the newly folded source's.
func renderMultiwayJoin(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	// colOf[i][c] is the output column of the join built so far holding
	// source i's column c, or -1 if source i hasn't been folded in yet.
	colOf := make([][]int, len(p.Sources))
	for i, src := range p.Sources {
		colOf[i] = make([]int, src.Arity)
		for c := range colOf[i] {
			colOf[i][c] = -1
		}
	}

	joined := p.Sources[0]
	for c := 0; c < p.Sources[0].Arity; c++ {
		colOf[0][c] = c
	}

	// classIndex maps a flattened (source,column) attribute to the index
	// of its equality class, so that when folding in source i we can find
	// which already-present attribute (if any) each of its columns must
	// equal.
	classIndex := make(map[[2]int]int, len(p.Equalities)*2)
	for ci, class := range p.Equalities {
		for _, a := range class {
			classIndex[[2]int{a.Source, a.Column}] = ci
		}
	}

	for i := 1; i < len(p.Sources); i++ {
		src := p.Sources[i]

		var keys []plan.JoinKey
		isKeyCol := make(map[int]bool, src.Arity)
		matchedOutputCol := make(map[int]int, src.Arity)
		for col := 0; col < src.Arity; col++ {
			ci, ok := classIndex[[2]int{i, col}]
			if !ok {
				continue
			}
			for _, a := range p.Equalities[ci] {
				if a.Source < i && colOf[a.Source][a.Column] >= 0 {
					keys = append(keys, plan.JoinKey{Left: colOf[a.Source][a.Column], Right: col})
					isKeyCol[col] = true
					matchedOutputCol[col] = colOf[a.Source][a.Column]
					break
				}
			}
		}

		// The join's output reorders joined's (child1's) columns into
		// key-columns-first (in keys' declared order), then its non-key
		// columns ascending — so every already-folded source's tracked
		// column position must be remapped to match, before src's own
		// columns are appended after (spec §4.5.2).
		leftKeysOrdered := make([]int, len(keys))
		for j, k := range keys {
			leftKeysOrdered[j] = k.Left
		}
		leftNonKey := nonKeyColumns(joined.Arity, leftKeysOrdered)

		remap := make(map[int]int, joined.Arity)
		for j, old := range leftKeysOrdered {
			remap[old] = j
		}
		for rank, old := range leftNonKey {
			remap[old] = len(keys) + rank
		}

		for s := 0; s < i; s++ {
			for c := range colOf[s] {
				if colOf[s][c] >= 0 {
					colOf[s][c] = remap[colOf[s][c]]
				}
			}
		}

		rightNonKeyBase := len(keys) + len(leftNonKey)
		srcNonKey := make([]int, 0, src.Arity)
		for col := 0; col < src.Arity; col++ {
			if !isKeyCol[col] {
				srcNonKey = append(srcNonKey, col)
			}
		}
		sort.Ints(srcNonKey)
		srcNonKeyRank := make(map[int]int, len(srcNonKey))
		for rank, col := range srcNonKey {
			srcNonKeyRank[col] = rank
		}

		for col := 0; col < src.Arity; col++ {
			if isKeyCol[col] {
				colOf[i][col] = remap[matchedOutputCol[col]]
			} else {
				colOf[i][col] = rightNonKeyBase + srcNonKeyRank[col]
			}
		}

		joined = joined.Join(src, keys)
	}

	results := make([]int, len(p.Results))
	for i, r := range p.Results {
		col := colOf[r.Source][r.Column]
		if col < 0 {
			return nil, fmt.Errorf("render: multiway join result references unresolved attribute %+v", r)
		}
		results[i] = col
	}

	return Render(ctx, joined.Project(results))
}
