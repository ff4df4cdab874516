// Package ltime implements the logical-time lattice the engine schedules
// against: a duration-valued time at the outer scope, and a product time
// (outer x loop-counter) inside recursive scopes.
package ltime

import (
	"fmt"
	"time"
)

// Time is the outer-scope logical timestamp: a duration since some
// client-chosen epoch, mirroring the wire-level Duration-valued Time in
// spec §3.
type Time struct {
	d time.Duration
}

// FromDuration constructs a Time from a duration.
func FromDuration(d time.Duration) Time { return Time{d: d} }

// Zero is the initial time, used for CreateInput's implicit initial batch.
var Zero = Time{}

// Duration returns the underlying duration.
func (t Time) Duration() time.Duration { return t.d }

func (t Time) String() string { return t.d.String() }

// Less reports whether t precedes o.
func (t Time) Less(o Time) bool { return t.d < o.d }

// LessEqual reports whether t precedes or equals o.
func (t Time) LessEqual(o Time) bool { return t.d <= o.d }

// Equal reports whether t and o name the same instant.
func (t Time) Equal(o Time) bool { return t.d == o.d }

// Meet returns the lattice greatest-lower-bound of t and o, which for a
// totally ordered duration is simply the minimum.
func (t Time) Meet(o Time) Time {
	if t.d < o.d {
		return t
	}
	return o
}

// Max returns the maximum of t and o. Useful when folding a frontier.
func Max(a, b Time) Time {
	if a.Less(b) {
		return b
	}
	return a
}

func (t Time) GoString() string { return fmt.Sprintf("ltime.FromDuration(%v)", t.d) }
