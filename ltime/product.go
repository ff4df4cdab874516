package ltime

import "fmt"

// Product is the time lattice used inside a recursive (iterative) subscope:
// the outer timestamp paired with a loop counter, per spec §3 ("a product
// time (outer x loop-counter) inside recursive scopes"). The loop counter
// only ever increases within a single outer timestamp's iteration; it has
// no meaning across outer timestamps.
type Product struct {
	Outer Time
	Loop  int
}

// NewProduct constructs a product time at loop iteration 0.
func NewProduct(outer Time) Product { return Product{Outer: outer, Loop: 0} }

// Next returns the product time for the following loop iteration at the
// same outer time — the lattice step recursive variables require on every
// cycle (spec §4.6: "must not emit cycles without at least one variable on
// the cycle, which provides the required lattice step").
func (p Product) Next() Product { return Product{Outer: p.Outer, Loop: p.Loop + 1} }

// Less reports whether p strictly precedes o in the product order: outer
// time dominates, loop counter breaks ties within the same outer time.
func (p Product) Less(o Product) bool {
	if !p.Outer.Equal(o.Outer) {
		return p.Outer.Less(o.Outer)
	}
	return p.Loop < o.Loop
}

// Meet returns the greatest lower bound of p and o.
func (p Product) Meet(o Product) Product {
	outer := p.Outer.Meet(o.Outer)
	loop := p.Loop
	if o.Loop < loop {
		loop = o.Loop
	}
	if !p.Outer.Equal(o.Outer) {
		// Differing outer times meet below either loop counter.
		loop = 0
	}
	return Product{Outer: outer, Loop: loop}
}

func (p Product) String() string { return fmt.Sprintf("(%s, %d)", p.Outer, p.Loop) }
