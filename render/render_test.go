package render

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

func newTestEngine(t *testing.T) *arrange.Engine {
	t.Helper()
	e, err := arrange.NewEngine()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, e.Close()) })
	return e
}

func edge(a, b int64) datum.Tuple { return datum.Tuple{datum.Int(a), datum.Int(b)} }
func node(a int64) datum.Tuple    { return datum.Tuple{datum.Int(a)} }

func TestRenderMapAndFilter(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	edges := plan.Source("Edges", 2)
	ctx.Sources["Edges"] = relation.New()
	ctx.Sources["Edges"].Add(edge(1, 2), 1)
	ctx.Sources["Edges"].Add(edge(2, 3), 1)

	swapped := edges.Project([]int{1, 0})
	out, err := Render(ctx, swapped)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Weight(edge(2, 1)))
	require.Equal(t, int64(1), out.Weight(edge(3, 2)))

	filtered := edges.Filter(plan.ColumnEquals{Index: 0, Value: datum.Int(1)})
	out, err = Render(ctx, filtered)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, int64(1), out.Weight(edge(1, 2)))
}

func TestRenderDistinctDropsMultiplicityAndNegatives(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	src := plan.Source("X", 1)
	ctx.Sources["X"] = relation.New()
	ctx.Sources["X"].Add(node(1), 3)
	ctx.Sources["X"].Add(node(2), -1)

	out, err := Render(ctx, src.Distinct())
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Weight(node(1)))
	require.Equal(t, int64(0), out.Weight(node(2)))
	require.Equal(t, 1, out.Len())
}

func TestRenderJoinOneHop(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	nodes := plan.Source("Nodes", 1)
	edges := plan.Source("Edges", 2)
	ctx.Sources["Nodes"] = relation.New()
	ctx.Sources["Nodes"].Add(node(0), 1)
	ctx.Sources["Edges"] = relation.New()
	ctx.Sources["Edges"].Add(edge(0, 1), 1)
	ctx.Sources["Edges"].Add(edge(1, 2), 1)

	oneHop := nodes.Join(edges, []plan.JoinKey{{Left: 0, Right: 0}}).Project([]int{1})
	out, err := Render(ctx, oneHop)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, int64(1), out.Weight(node(1)))
}

func TestRenderJoinColumnOrderWhenChild1KeyIsNotLeading(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	edges := plan.Source("Edges", 2) // (x, y)
	labels := plan.Source("Labels", 2) // (y, tag)
	ctx.Sources["Edges"] = relation.New()
	ctx.Sources["Edges"].Add(edge(1, 2), 1)
	ctx.Sources["Labels"] = relation.New()
	ctx.Sources["Labels"].Add(edge(2, 9), 1)

	// Join key is Edges' *trailing* column, so a column-order bug that
	// just concatenates child1's whole tuple with child2's value would
	// put Edges' columns back in (x, y) order instead of the spec's
	// key ∥ child1-non-key ∥ child2-non-key ordering: (y, x, tag).
	joined := edges.Join(labels, []plan.JoinKey{{Left: 1, Right: 0}})
	out, err := Render(ctx, joined)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, int64(1), out.Weight(datum.Tuple{datum.Int(2), datum.Int(1), datum.Int(9)}))
}

func TestRenderConcat(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	a := plan.Source("A", 1)
	b := plan.Source("B", 1)
	ctx.Sources["A"] = relation.New()
	ctx.Sources["A"].Add(node(1), 1)
	ctx.Sources["B"] = relation.New()
	ctx.Sources["B"].Add(node(1), 1)
	ctx.Sources["B"].Add(node(2), 1)

	out, err := Render(ctx, a.Concat(b))
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Weight(node(1)))
	require.Equal(t, int64(1), out.Weight(node(2)))
}

func TestInstallResolvesReachabilityFixedPoint(t *testing.T) {
	engine := newTestEngine(t)
	traces := arrange.NewTraceManager(engine)

	nodesPlan := plan.Source("Nodes", 1)
	edgesPlan := plan.Source("Edges", 2)

	nodesArr := traces.GetOrCreate(nodesPlan, nil)
	require.NoError(t, nodesArr.MergeDiff(node(0), datum.Tuple{}, 0, 1))

	edgesArr := traces.GetOrCreate(edgesPlan, nil)
	require.NoError(t, edgesArr.MergeDiff(edge(0, 1), datum.Tuple{}, 0, 1))
	require.NoError(t, edgesArr.MergeDiff(edge(1, 2), datum.Tuple{}, 0, 1))
	require.NoError(t, edgesArr.MergeDiff(edge(2, 3), datum.Tuple{}, 0, 1))

	reach := plan.Local("Reach", 1).
		Join(edgesPlan, []plan.JoinKey{{Left: 0, Right: 0}}).
		Project([]int{1}).
		Concat(nodesPlan).
		Distinct()

	q := reach.IntoRule("Reach").
		IntoQuery().
		AddImport(nodesPlan, nil).
		AddImport(edgesPlan, nil).
		AddPublish(reach, nil)

	queryEngine := newTestEngine(t)
	published, err := Install(q, traces, queryEngine, 0)
	require.NoError(t, err)
	require.Len(t, published, 1)

	got := make(map[int64]bool)
	for _, row := range published[0].Rows {
		v, _ := row.Key[0].Int64()
		got[v] = true
	}
	require.Equal(t, map[int64]bool{0: true, 1: true, 2: true, 3: true}, got)
}

func TestRenderMemoizesSharedSubplan(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	src := plan.Source("X", 1)
	ctx.Sources["X"] = relation.New()
	ctx.Sources["X"].Add(node(1), 1)

	shared := src.Distinct()
	diamond := shared.Concat(shared)
	out, err := Render(ctx, diamond)
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Weight(node(1)))
}
