package manager

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/ltime"
	"github.com/wbrown/flowbase/plan"
)

func edgeTuple(a, b int64) datum.Tuple { return datum.Tuple{datum.Int(a), datum.Int(b)} }

// Scenario D (spec §8 Invariant 1): inserting an edge at time 0 and
// retracting it at time 2 must leave a query "as of" time 1 still seeing
// the edge, and a query "as of" time 2 no longer seeing it. Both the
// input-session flush path (manager/input.go) and the query install/
// publish path (manager/command.go, render.Install) must honor each
// update's own time rather than the time it happened to be flushed at.
func TestQueryHonorsAsOfTimeAcrossRetraction(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, m.Close()) })

	require.NoError(t, m.Dispatch(CreateInput{Name: "Edges", Arity: 2}))
	require.NoError(t, m.Dispatch(UpdateInput{
		Name: "Edges",
		Updates: []Update{
			{Tuple: edgeTuple(0, 1), Time: ltime.FromDuration(0), Diff: 1},
			{Tuple: edgeTuple(0, 1), Time: ltime.FromDuration(2), Diff: -1},
		},
	}))

	edgesPlan := plan.Source("Edges", 2)

	// Advance only to time 1: the insert at time 0 has happened, the
	// retraction at time 2 has not. AdvanceTime flushes every pending
	// update at its own recorded time rather than at the time it
	// happens to be flushed, so both updates land in the arrangement
	// here but only the t=0 insert is visible to a t=1 read.
	require.NoError(t, m.Dispatch(AdvanceTime{Time: ltime.FromDuration(1)}))

	arr, ok := m.Traces.Get(edgesPlan, nil)
	require.True(t, ok)
	rows, err := arr.Rows(1)
	require.NoError(t, err)
	require.Len(t, rows, 1, "edge inserted at t=0 must be visible as of t=1, before its t=2 retraction")

	// Querying through a full install at the same asOf must agree.
	snapshot := edgesPlan.Project([]int{0, 1})
	require.NoError(t, m.Dispatch(QueryCommand{
		Query: plan.NewQuery().AddImport(edgesPlan, nil).AddPublish(snapshot, nil),
	}))
	snapArr, ok := m.Traces.Get(snapshot, nil)
	require.True(t, ok)
	snapRows, err := snapArr.Rows(m.Traces.CurrentTime())
	require.NoError(t, err)
	require.Len(t, snapRows, 1, "a query installed as of t=1 must publish the still-visible edge")

	// Now advance past the retraction: a fresh read as of t=2 must no
	// longer see the edge.
	require.NoError(t, m.Dispatch(AdvanceTime{Time: ltime.FromDuration(2)}))
	rows, err = arr.Rows(2)
	require.NoError(t, err)
	require.Empty(t, rows, "edge retracted at t=2 must be gone as of t=2")
}
