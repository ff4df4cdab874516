package plan

import (
	"fmt"

	"github.com/wbrown/flowbase/datum"
)

// Predicate is evaluated against a tuple inside a Filter plan node. Like
// Expression, every Predicate must be pure and deterministic, and must
// produce a stable String() so Filter nodes participate correctly in the
// plan's structural cache key.
type Predicate interface {
	Eval(tuple datum.Tuple) bool
	String() string
}

// ColumnEquals retains tuples whose column Index equals Value.
type ColumnEquals struct {
	Index int
	Value datum.Value
}

// Eval implements Predicate.
func (p ColumnEquals) Eval(tuple datum.Tuple) bool {
	return tuple[p.Index].Equal(p.Value)
}

func (p ColumnEquals) String() string { return fmt.Sprintf("$%d = %s", p.Index, p.Value) }

// ColumnsEqual retains tuples whose columns A and B hold equal values.
type ColumnsEqual struct {
	A, B int
}

// Eval implements Predicate.
func (p ColumnsEqual) Eval(tuple datum.Tuple) bool {
	return tuple[p.A].Equal(tuple[p.B])
}

func (p ColumnsEqual) String() string { return fmt.Sprintf("$%d = $%d", p.A, p.B) }

// Not negates an inner predicate.
type Not struct {
	Inner Predicate
}

// Eval implements Predicate.
func (p Not) Eval(tuple datum.Tuple) bool { return !p.Inner.Eval(tuple) }

func (p Not) String() string { return fmt.Sprintf("!(%s)", p.Inner) }

// And is the conjunction of zero or more predicates (vacuously true).
type And struct {
	Preds []Predicate
}

// Eval implements Predicate.
func (p And) Eval(tuple datum.Tuple) bool {
	for _, inner := range p.Preds {
		if !inner.Eval(tuple) {
			return false
		}
	}
	return true
}

func (p And) String() string { return fmt.Sprintf("and%v", p.Preds) }

// Or is the disjunction of zero or more predicates (vacuously false).
type Or struct {
	Preds []Predicate
}

// Eval implements Predicate.
func (p Or) Eval(tuple datum.Tuple) bool {
	for _, inner := range p.Preds {
		if inner.Eval(tuple) {
			return true
		}
	}
	return false
}

func (p Or) String() string { return fmt.Sprintf("or%v", p.Preds) }
