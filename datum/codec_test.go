package datum

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	values := []Value{
		Int(-7),
		Uint(42),
		String("hello"),
		Bytes([]byte{0x01, 0x02, 0x03}),
		Bool(true),
		Bool(false),
	}
	for _, v := range values {
		buf := EncodeValue(nil, v)
		got, rest, err := DecodeValue(buf)
		require.NoError(t, err)
		require.Empty(t, rest)
		require.True(t, v.Equal(got), "round-trip mismatch for %v", v)
	}
}

func TestEncodeDecodeTupleRoundTrip(t *testing.T) {
	tup := Tuple{Int(1), String("a"), Uint(9)}
	buf := EncodeTuple(tup)
	got, err := DecodeTuple(buf)
	require.NoError(t, err)
	require.True(t, tup.Equal(got))
}

func TestExpressionProjectionEval(t *testing.T) {
	tup := Tuple{Int(10), Int(20), Int(30)}
	expr := Proj(1)
	require.Equal(t, 1, expr.MaxIndex()) // sanity: MaxIndex returns the index itself
	require.True(t, SubjectTo(tup, expr).Equal(Int(20)))
}

func TestValueGobRoundTrip(t *testing.T) {
	tup := Tuple{Int(-7), Uint(42), String("hi"), Bytes([]byte{1, 2}), Bool(true)}

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(tup))

	var got Tuple
	require.NoError(t, gob.NewDecoder(&buf).Decode(&got))
	require.True(t, tup.Equal(got))
}

func TestConstExpression(t *testing.T) {
	expr := Lit(String("k"))
	require.Equal(t, -1, expr.MaxIndex())
	require.True(t, expr.Eval(Tuple{Int(1)}).Equal(String("k")))
}
