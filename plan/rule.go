package plan

// Rule names a plan as a recursive variable: a Rule may refer to its own
// Local(name, arity) anywhere inside Plan, and a Query containing it wires
// that reference back to the rule's own definition through an iterative
// subscope (spec §4.6).
type Rule struct {
	Name string
	Plan *Plan
}

// IntoRule names p as the definition of a recursive variable, mirroring the
// Rust builder's `plan.into_rule(name)` (bin/client.rs).
func (p *Plan) IntoRule(name string) Rule {
	return Rule{Name: name, Plan: p}
}

// Import pairs a source plan with the key columns its arrangement should be
// indexed by when entering a query's iterative subscope.
type Import struct {
	Plan *Plan
	Keys []int
}

// Publish pairs a plan with the key columns under which its resulting
// collection should be re-arranged and handed back to the TraceManager for
// later queries to import.
type Publish struct {
	Plan *Plan
	Keys []int
}

// Query is one unit of dataflow construction: a set of rules bound as
// recursive variables inside a single iterative subscope, a set of
// traces imported into that subscope, and a set of resulting collections
// published back out as new arrangements (spec §4.6).
type Query struct {
	Rules   []Rule
	Imports []Import
	Publish []Publish
}

// NewQuery returns an empty query, equivalent to the Rust `Query::new()`.
func NewQuery() *Query { return &Query{} }

// IntoQuery wraps a single rule in a fresh query, the idiom bin/client.rs
// uses after `.into_rule(name)`.
func (r Rule) IntoQuery() *Query {
	return NewQuery().AddRule(r)
}

// AddRule registers a named recursive variable's definition with the query.
func (q *Query) AddRule(r Rule) *Query {
	q.Rules = append(q.Rules, r)
	return q
}

// AddImport arranges for p's trace, keyed by keys, to be imported into the
// query's iterative subscope before rendering begins.
func (q *Query) AddImport(p *Plan, keys []int) *Query {
	q.Imports = append(q.Imports, Import{Plan: p, Keys: keys})
	return q
}

// AddPublish arranges for p's rendered collection, keyed by keys, to be
// re-arranged and stored back in the TraceManager once the query completes,
// so later queries can import it by name.
func (q *Query) AddPublish(p *Plan, keys []int) *Query {
	q.Publish = append(q.Publish, Publish{Plan: p, Keys: keys})
	return q
}
