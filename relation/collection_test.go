package relation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
)

func TestAddAccumulatesAndRemovesAtZero(t *testing.T) {
	c := New()
	tuple := datum.Tuple{datum.Int(1), datum.String("a")}

	c.Add(tuple, 1)
	require.Equal(t, int64(1), c.Weight(tuple))
	require.Equal(t, 1, c.Len())

	c.Add(tuple, 1)
	require.Equal(t, int64(2), c.Weight(tuple))

	c.Add(tuple, -2)
	require.Equal(t, int64(0), c.Weight(tuple))
	require.Equal(t, 0, c.Len())
}

func TestMerge(t *testing.T) {
	a := New()
	a.Add(datum.Tuple{datum.Int(1)}, 1)
	b := New()
	b.Add(datum.Tuple{datum.Int(1)}, 1)
	b.Add(datum.Tuple{datum.Int(2)}, 1)

	a.Merge(b)
	require.Equal(t, int64(2), a.Weight(datum.Tuple{datum.Int(1)}))
	require.Equal(t, int64(1), a.Weight(datum.Tuple{datum.Int(2)}))
	require.Equal(t, 2, a.Len())
}

func TestSortedIsDeterministic(t *testing.T) {
	c := New()
	c.Add(datum.Tuple{datum.Int(2)}, 1)
	c.Add(datum.Tuple{datum.Int(1)}, 1)

	sorted := c.Sorted()
	require.Len(t, sorted, 2)
	require.True(t, sorted[0].Tuple.String() < sorted[1].Tuple.String())
}
