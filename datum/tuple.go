package datum

import "strings"

// Tuple is an ordered sequence of Values — a single row of a relation.
type Tuple []Value

// Clone returns an independent copy of the tuple.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

// Project returns a new Tuple containing only the columns at indices, in
// the order given.
func (t Tuple) Project(indices []int) Tuple {
	out := make(Tuple, len(indices))
	for i, idx := range indices {
		out[i] = t[idx]
	}
	return out
}

// Concat returns a new Tuple that is the concatenation of parts, in order.
// Used to assemble join output rows.
func Concat(parts ...Tuple) Tuple {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Tuple, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal reports whether two tuples have the same arity and equal values at
// every position.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
