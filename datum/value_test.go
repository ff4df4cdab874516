package datum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareOrdersByKindThenContent(t *testing.T) {
	require.Equal(t, 0, Compare(Int(1), Int(1)))
	require.Equal(t, -1, Compare(Int(1), Int(2)))
	require.Equal(t, 1, Compare(Int(2), Int(1)))
	require.Equal(t, -1, Compare(Int(5), Uint(0)), "Int kind sorts before Uint regardless of content")
	require.Equal(t, -1, Compare(String("a"), String("b")))
	require.Equal(t, 0, Compare(Bytes([]byte("x")), Bytes([]byte("x"))))
	require.Equal(t, -1, Compare(Bool(false), Bool(true)))
}

func TestValueEqual(t *testing.T) {
	require.True(t, Int(42).Equal(Int(42)))
	require.False(t, Int(42).Equal(Uint(42)))
	require.False(t, String("a").Equal(String("b")))
}

func TestTupleEqualAndProject(t *testing.T) {
	tup := Tuple{Int(1), String("x"), Bool(true)}
	require.True(t, tup.Equal(Tuple{Int(1), String("x"), Bool(true)}))
	require.False(t, tup.Equal(Tuple{Int(1), String("x")}))

	proj := tup.Project([]int{2, 0})
	require.True(t, proj.Equal(Tuple{Bool(true), Int(1)}))
}

func TestTupleCloneIsIndependent(t *testing.T) {
	tup := Tuple{Int(1)}
	clone := tup.Clone()
	clone[0] = Int(2)
	require.True(t, tup.Equal(Tuple{Int(1)}))
}

func TestConcatTuples(t *testing.T) {
	out := Concat(Tuple{Int(1)}, Tuple{Int(2), Int(3)})
	require.True(t, out.Equal(Tuple{Int(1), Int(2), Int(3)}))
}
