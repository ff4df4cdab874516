// Package datum defines the value domain carried by tuples and the small
// expression language used in projections.
package datum

import (
	"bytes"
	"fmt"
)

// Kind tags the concrete type held by a Value.
type Kind uint8

const (
	// KindInt holds a signed 64-bit integer.
	KindInt Kind = iota
	// KindUint holds an unsigned 64-bit integer.
	KindUint
	// KindString holds a UTF-8 string.
	KindString
	// KindBytes holds an opaque byte string.
	KindBytes
	// KindBool holds a boolean.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single Datum: a totally ordered, hashable, cloneable, wire
// serializable primitive. Plans, tuples, and cache keys carry Values, never
// raw interface{}, so comparisons and encodings stay total and deterministic.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	s    string
	b    []byte
	bl   bool
}

// Int constructs a signed-integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint constructs an unsigned-integer Value.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes constructs a byte-string Value. The slice is retained, not copied;
// callers must treat it as immutable once wrapped.
func Bytes(b []byte) Value { return Value{kind: KindBytes, b: b} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, bl: b} }

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// Int64 returns the underlying signed integer and whether the Value is one.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt }

// Uint64 returns the underlying unsigned integer and whether the Value is one.
func (v Value) Uint64() (uint64, bool) { return v.u, v.kind == KindUint }

// Str returns the underlying string and whether the Value is one.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// ByteSlice returns the underlying bytes and whether the Value is one.
func (v Value) ByteSlice() ([]byte, bool) { return v.b, v.kind == KindBytes }

// Boolean returns the underlying boolean and whether the Value is one.
func (v Value) Boolean() (bool, bool) { return v.bl, v.kind == KindBool }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindUint:
		return fmt.Sprintf("%d", v.u)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("%x", v.b)
	case KindBool:
		return fmt.Sprintf("%t", v.bl)
	default:
		return "<invalid>"
	}
}

// Equal reports whether two Values hold the same kind and content.
func (v Value) Equal(o Value) bool {
	return Compare(v, o) == 0
}

// Compare imposes the total order over Values: first by kind, then by
// content. It is deterministic and stable across runs (no map iteration,
// no pointer addresses). Arrangement key bytes come from EncodeValue, whose
// byte order does not follow this order.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindInt:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	case KindUint:
		switch {
		case a.u < b.u:
			return -1
		case a.u > b.u:
			return 1
		default:
			return 0
		}
	case KindString:
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	case KindBytes:
		return bytes.Compare(a.b, b.b)
	case KindBool:
		if a.bl == b.bl {
			return 0
		}
		if !a.bl {
			return -1
		}
		return 1
	default:
		return 0
	}
}
