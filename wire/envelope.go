// Package wire implements the length-framed, gob-serialized encoding of
// Command<V> values a client pushes over the TCP transport (spec §6).
// The transport and its binary serialization are named in spec §1 as an
// external collaborator the core does not need to reproduce faithfully;
// this package is a concrete, idiomatic-Go stand-in for it (encoding/gob
// rather than the original's bincode-ish framing), sufficient to drive
// Manager.Dispatch end to end over a real socket.
package wire

import (
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/ltime"
	"github.com/wbrown/flowbase/manager"
	"github.com/wbrown/flowbase/plan"
)

// Kind discriminates which of the seven command variants an Envelope
// carries.
type Kind uint8

const (
	KindCreateInput Kind = iota
	KindUpdateInput
	KindCloseInput
	KindAdvanceTime
	KindQuery
	KindSourceLogging
	KindShutdown
)

// Update mirrors manager.Update, carrying a logical time as a plain
// duration in nanoseconds rather than ltime.Time, since ltime.Time's
// field is unexported.
type Update struct {
	Tuple     datum.Tuple
	TimeNanos int64
	Diff      int64
}

// Envelope is the single wire-level struct every Command<V> value is
// flattened into: only the fields relevant to Kind are populated, the
// rest left zero, mirroring the original's enum-of-structs shape without
// requiring Go interface registration for the envelope itself (the Plan
// tree it may carry still needs plan/gob.go's registrations).
type Envelope struct {
	Kind Kind

	// CreateInput / UpdateInput / CloseInput / SourceLogging name.
	Name string

	// CreateInput
	Arity   int
	Initial []datum.Tuple

	// UpdateInput
	Updates []Update

	// AdvanceTime
	TimeNanos int64

	// Query
	Query *plan.Query

	// SourceLogging
	Addr             string
	Flavor           string
	Count            int
	GranularityNanos int64
}

// ToCommand converts a decoded Envelope into the manager.Command it
// describes.
func (e Envelope) ToCommand() manager.Command {
	switch e.Kind {
	case KindCreateInput:
		return manager.CreateInput{Name: e.Name, Arity: e.Arity, Initial: e.Initial}
	case KindUpdateInput:
		updates := make([]manager.Update, len(e.Updates))
		for i, u := range e.Updates {
			updates[i] = manager.Update{Tuple: u.Tuple, Time: ltime.FromDuration(durationOf(u.TimeNanos)), Diff: u.Diff}
		}
		return manager.UpdateInput{Name: e.Name, Updates: updates}
	case KindCloseInput:
		return manager.CloseInput{Name: e.Name}
	case KindAdvanceTime:
		return manager.AdvanceTime{Time: ltime.FromDuration(durationOf(e.TimeNanos))}
	case KindQuery:
		return manager.QueryCommand{Query: plan.RehydrateQuery(e.Query)}
	case KindSourceLogging:
		return manager.SourceLogging{
			Addr: e.Addr, Flavor: e.Flavor, Count: e.Count,
			Granularity: e.GranularityNanos, Name: e.Name,
		}
	case KindShutdown:
		return manager.Shutdown{}
	default:
		return nil
	}
}

// FromCreateInput builds the wire Envelope for a CreateInput command.
func FromCreateInput(name string, arity int, initial []datum.Tuple) Envelope {
	return Envelope{Kind: KindCreateInput, Name: name, Arity: arity, Initial: initial}
}

// FromUpdateInput builds the wire Envelope for an UpdateInput command.
func FromUpdateInput(name string, updates []Update) Envelope {
	return Envelope{Kind: KindUpdateInput, Name: name, Updates: updates}
}

// FromCloseInput builds the wire Envelope for a CloseInput command.
func FromCloseInput(name string) Envelope {
	return Envelope{Kind: KindCloseInput, Name: name}
}

// FromAdvanceTime builds the wire Envelope for an AdvanceTime command.
func FromAdvanceTime(timeNanos int64) Envelope {
	return Envelope{Kind: KindAdvanceTime, TimeNanos: timeNanos}
}

// FromQuery builds the wire Envelope for a Query command.
func FromQuery(q *plan.Query) Envelope {
	return Envelope{Kind: KindQuery, Query: q}
}

// FromSourceLogging builds the wire Envelope for a SourceLogging command.
func FromSourceLogging(addr, flavor string, count int, granularityNanos int64, name string) Envelope {
	return Envelope{Kind: KindSourceLogging, Addr: addr, Flavor: flavor, Count: count, GranularityNanos: granularityNanos, Name: name}
}

// FromShutdown builds the wire Envelope for a Shutdown command.
func FromShutdown() Envelope {
	return Envelope{Kind: KindShutdown}
}
