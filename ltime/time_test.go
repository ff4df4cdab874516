package ltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeOrdering(t *testing.T) {
	t0 := FromDuration(0)
	t1 := FromDuration(time.Second)
	require.True(t, t0.Less(t1))
	require.False(t, t1.Less(t0))
	require.True(t, t0.LessEqual(t0))
	require.Equal(t, t0, t0.Meet(t1))
}

func TestProductOrdering(t *testing.T) {
	outer := FromDuration(time.Second)
	p0 := NewProduct(outer)
	p1 := p0.Next()
	require.True(t, p0.Less(p1))
	require.Equal(t, 0, p0.Loop)
	require.Equal(t, 1, p1.Loop)

	earlier := NewProduct(FromDuration(0))
	require.True(t, earlier.Less(p0), "a lesser outer time always precedes regardless of loop counter")
}

func TestProductMeetAcrossOuterTimes(t *testing.T) {
	a := Product{Outer: FromDuration(time.Second), Loop: 5}
	b := Product{Outer: FromDuration(2 * time.Second), Loop: 1}
	m := a.Meet(b)
	require.Equal(t, FromDuration(time.Second), m.Outer)
	require.Equal(t, 0, m.Loop)
}
