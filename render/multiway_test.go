package render

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// TestRenderMultiwayJoinTriangles models the triangle-counting motif: three
// copies of an Edges(2) relation joined so that Edges1.dst = Edges2.src,
// Edges2.dst = Edges3.src, Edges3.dst = Edges1.src, producing one result
// tuple per rotation of each directed triangle: (0,1,2), (1,2,0) and
// (2,0,1) for the cycle 0->1->2->0.
func TestRenderMultiwayJoinTriangles(t *testing.T) {
	engine := newTestEngine(t)
	stash := arrange.NewStash(engine)
	ctx := NewContext(stash, 0)

	edges := plan.Source("Edges", 2)
	ctx.Sources["Edges"] = relation.New()
	ctx.Sources["Edges"].Add(edge(0, 1), 1)
	ctx.Sources["Edges"].Add(edge(1, 2), 1)
	ctx.Sources["Edges"].Add(edge(2, 0), 1)
	ctx.Sources["Edges"].Add(edge(3, 4), 1) // no triangle through here

	triangles := plan.MultiwayJoin(
		[]*plan.Plan{edges, edges, edges},
		[][]plan.Attr{
			{{Source: 0, Column: 1}, {Source: 1, Column: 0}},
			{{Source: 1, Column: 1}, {Source: 2, Column: 0}},
			{{Source: 2, Column: 1}, {Source: 0, Column: 0}},
		},
		[]plan.Attr{{Source: 0, Column: 0}, {Source: 1, Column: 0}, {Source: 2, Column: 0}},
	)

	out, err := Render(ctx, triangles)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Weight(datum.Tuple{datum.Int(0), datum.Int(1), datum.Int(2)}))
}
