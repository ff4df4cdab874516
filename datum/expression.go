package datum

import "fmt"

// Expression is the small language evaluated against a tuple to produce a
// Value inside a Map plan node. Every Expression must be pure and
// deterministic so that memoized rendering and recursion fixed points stay
// well defined.
type Expression interface {
	// Eval evaluates the expression against tuple.
	Eval(tuple Tuple) Value
	// MaxIndex returns the largest column index the expression reads, used
	// to validate arity before rendering (contract: arity >= MaxIndex()+1).
	MaxIndex() int
	String() string
}

// Projection is the minimal Expression: it returns the i-th column of the
// tuple unchanged.
type Projection struct {
	Index int
}

// Proj constructs an i-th-column projection expression.
func Proj(i int) Projection { return Projection{Index: i} }

// Eval implements Expression.
func (p Projection) Eval(tuple Tuple) Value { return tuple[p.Index] }

// MaxIndex implements Expression.
func (p Projection) MaxIndex() int { return p.Index }

func (p Projection) String() string { return fmt.Sprintf("$%d", p.Index) }

// Const is an Expression that ignores its input and always evaluates to a
// fixed Value. Useful for literal columns introduced by Map.
type Const struct {
	Value Value
}

// Lit constructs a constant expression.
func Lit(v Value) Const { return Const{Value: v} }

// Eval implements Expression.
func (c Const) Eval(Tuple) Value { return c.Value }

// MaxIndex implements Expression. A constant reads no columns.
func (c Const) MaxIndex() int { return -1 }

func (c Const) String() string { return c.Value.String() }

// SubjectTo evaluates expr against tuple. Named to match the spec's
// subject_to(tuple, expression) -> V operation.
func SubjectTo(tuple Tuple, expr Expression) Value {
	return expr.Eval(tuple)
}
