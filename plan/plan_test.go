package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
)

func TestProjectDerivesArity(t *testing.T) {
	edges := Source("Edges", 2)
	swapped := edges.Project([]int{1, 0})
	require.Equal(t, 2, swapped.Arity)
}

func TestProjectOutOfRangePanics(t *testing.T) {
	edges := Source("Edges", 2)
	require.Panics(t, func() { edges.Project([]int{2}) })
}

func TestJoinArityIsSumMinusKeys(t *testing.T) {
	nodes := Source("Nodes", 1)
	edges := Source("Edges", 2)
	joined := nodes.Join(edges, []JoinKey{{Left: 0, Right: 0}})
	require.Equal(t, 2, joined.Arity)
}

func TestJoinKeyOutOfRangePanics(t *testing.T) {
	nodes := Source("Nodes", 1)
	edges := Source("Edges", 2)
	require.Panics(t, func() { nodes.Join(edges, []JoinKey{{Left: 1, Right: 0}}) })
}

func TestConcatArityMismatchPanics(t *testing.T) {
	nodes := Source("Nodes", 1)
	edges := Source("Edges", 2)
	require.Panics(t, func() { nodes.Concat(edges) })
}

func TestMultiwayJoinValidatesAttrs(t *testing.T) {
	edges := Source("Edges", 2)
	require.Panics(t, func() {
		MultiwayJoin([]*Plan{edges}, nil, []Attr{{Source: 1, Column: 0}})
	})
	require.NotPanics(t, func() {
		MultiwayJoin([]*Plan{edges, edges}, [][]Attr{{{Source: 0, Column: 1}, {Source: 1, Column: 0}}}, []Attr{{Source: 0, Column: 0}, {Source: 1, Column: 1}})
	})
}

func TestStructurallyIdenticalPlansShareKey(t *testing.T) {
	a := Source("Nodes", 1).Join(Source("Edges", 2), []JoinKey{{Left: 0, Right: 0}}).Project([]int{1})
	b := Source("Nodes", 1).Join(Source("Edges", 2), []JoinKey{{Left: 0, Right: 0}}).Project([]int{1})
	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())
}

func TestDifferingPlansHaveDifferentKeys(t *testing.T) {
	a := Source("Nodes", 1).Project([]int{0})
	b := Source("Edges", 2).Project([]int{0})
	require.False(t, a.Equal(b))
}

func TestFilterParticipatesInKey(t *testing.T) {
	base := Source("Edges", 2)
	a := base.Filter(ColumnEquals{Index: 0, Value: datum.Int(1)})
	b := base.Filter(ColumnEquals{Index: 0, Value: datum.Int(2)})
	require.NotEqual(t, a.Key(), b.Key())
}

func TestDefaultKeys(t *testing.T) {
	require.Equal(t, []int{0, 1, 2}, DefaultKeys(3))
}

func TestRuleQueryBuilderChain(t *testing.T) {
	reach := Source("Reach", 1).
		Join(Source("Edges", 2), []JoinKey{{Left: 0, Right: 0}}).
		Project([]int{1}).
		Concat(Source("Nodes", 1)).
		Distinct().
		Inspect("reach")

	query := reach.IntoRule("Reach").
		IntoQuery().
		AddImport(Source("Nodes", 1), []int{0}).
		AddImport(Source("Edges", 2), []int{0, 1})

	require.Len(t, query.Rules, 1)
	require.Equal(t, "Reach", query.Rules[0].Name)
	require.Len(t, query.Imports, 2)
	require.Empty(t, query.Publish)
}

func TestAddPublish(t *testing.T) {
	q := NewQuery().AddPublish(Source("XYErrors", 2), []int{0, 1})
	require.Len(t, q.Publish, 1)
	require.Equal(t, []int{0, 1}, q.Publish[0].Keys)
}
