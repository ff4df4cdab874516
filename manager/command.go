package manager

import (
	"fmt"
	"time"

	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/ltime"
	"github.com/wbrown/flowbase/logging"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/render"
)

// Command is one dispatchable unit of work the command loop executes
// against a Manager (spec §4.8). Each of the seven command kinds §6 names
// a concrete type implementing this interface.
type Command interface {
	Execute(m *Manager) error
}

// Update is one (tuple, time, diff) triple submitted by an UpdateInput
// command (spec §3 "Update").
type Update struct {
	Tuple datum.Tuple
	Time  ltime.Time
	Diff  int64
}

// CreateInput declares a new named input relation and inserts its initial
// rows at time zero (spec §4.7, §6).
type CreateInput struct {
	Name    string
	Arity   int
	Initial []datum.Tuple
}

func (c CreateInput) Execute(m *Manager) error {
	start := time.Now()
	arr := m.Traces.GetOrCreate(sourcePlan(c.Name, c.Arity), nil)
	session := NewInputSession(c.Name, c.Arity, arr)
	for _, tuple := range c.Initial {
		if err := session.UpdateAt(tuple, ltime.Zero, 1); err != nil {
			return fmt.Errorf("manager: CreateInput %q: %w", c.Name, err)
		}
	}
	if err := session.Flush(); err != nil {
		return fmt.Errorf("manager: CreateInput %q: %w", c.Name, err)
	}
	m.Inputs.Insert(c.Name, session)
	m.Events.AddTiming(logging.InputCreated, start, map[string]any{
		"name": c.Name, "arity": c.Arity, "initial": len(c.Initial),
	})
	return nil
}

// UpdateInput submits a batch of updates to an already-created input.
// Per spec §4.8/§7/§9, an unknown input name is an operational error:
// logged and ignored, never fatal to the command loop.
type UpdateInput struct {
	Name    string
	Updates []Update
}

func (c UpdateInput) Execute(m *Manager) error {
	start := time.Now()
	session, ok := m.Inputs.Get(c.Name)
	if !ok {
		m.Events.AddTiming(logging.ErrorContract, start, map[string]any{
			"error": fmt.Sprintf("UpdateInput: unknown input %q", c.Name),
		})
		return nil
	}
	for _, u := range c.Updates {
		if err := session.UpdateAt(u.Tuple, u.Time, u.Diff); err != nil {
			return fmt.Errorf("manager: UpdateInput %q: %w", c.Name, err)
		}
	}
	m.Events.AddTiming(logging.InputUpdated, start, map[string]any{
		"name": c.Name, "count": len(c.Updates),
	})
	return nil
}

// CloseInput terminates an input session; subsequent updates to the same
// name are treated as unknown (spec §4.7 "close").
type CloseInput struct {
	Name string
}

func (c CloseInput) Execute(m *Manager) error {
	m.Inputs.Close(c.Name)
	m.Events.Add(logging.Event{Name: logging.InputClosed, Data: map[string]any{"name": c.Name}})
	return nil
}

// AdvanceTime advances every input session and every maintained
// arrangement past Time, then blocks until no maintained trace's upper
// frontier still precedes Time (spec §4.4, §4.8, §5). The renderer here
// is a batch recompute rather than a streamed dataflow, so every maintained
// trace is already at quiescence the instant AdvanceTime's flush returns;
// the LessThan loop still runs so the contract (and its shape, for a
// future streaming renderer) is exercised rather than assumed away.
type AdvanceTime struct {
	Time ltime.Time
}

func (c AdvanceTime) Execute(m *Manager) error {
	start := time.Now()
	if err := m.Inputs.AdvanceTime(c.Time); err != nil {
		return fmt.Errorf("manager: AdvanceTime: %w", err)
	}
	nanos := int64(c.Time.Duration())
	m.Traces.AdvanceTime(nanos)
	for i := 0; m.Traces.LessThan(nanos) && i < maxAdvanceSteps; i++ {
		// No real worker to step; a streaming renderer would block here on
		// its progress probe. Bounded so a LessThan bug can never hang the
		// command loop forever.
	}
	m.Events.AddTiming(logging.TimeAdvanced, start, map[string]any{"time": c.Time.String()})
	return nil
}

const maxAdvanceSteps = 1

// QueryCommand installs a query's rules, honoring its imports and
// publishing its results back into the TraceManager (spec §4.6, §6
// "Query"). Named QueryCommand (not Query) to avoid colliding with
// plan.Query, which it wraps.
type QueryCommand struct {
	Query *plan.Query
}

func (c QueryCommand) Execute(m *Manager) error {
	start := time.Now()
	m.Events.Add(logging.Event{Name: logging.QueryInstallBegin, Data: map[string]any{"rules": len(c.Query.Rules)}})

	// Install's Stash needs an engine distinct from the TraceManager's own,
	// so an ephemeral local arrangement built while rendering this query
	// can never collide with a trace a prior query already published under
	// the same (plan, keys) pair (see arrange.NewStash).
	queryEngine, err := arrange.NewEngine()
	if err != nil {
		return fmt.Errorf("manager: Query: %w", err)
	}
	defer queryEngine.Close()

	asOf := m.Traces.CurrentTime()
	published, err := render.Install(c.Query, m.Traces, queryEngine, asOf)
	if err != nil {
		m.Events.AddTiming(logging.ErrorQueryInstall, start, map[string]any{"error": err.Error()})
		return nil
	}

	// Nothing is written back to m.Traces until every publish plan has
	// rendered successfully, so a failed Install above leaves the Manager
	// observably unchanged (spec §7 "Propagation policy"). Results are
	// published at the same asOf the query read its imports at, so a
	// later query reading "as of" an earlier time still won't see them.
	for _, pub := range published {
		arr := m.Traces.GetOrCreate(pub.Plan, pub.Keys)
		for _, row := range pub.Rows {
			if err := arr.MergeDiff(row.Key, row.Val, asOf, row.Diff); err != nil {
				return fmt.Errorf("manager: Query: publishing %s: %w", pub.Plan.Key(), err)
			}
		}
		m.Traces.Set(pub.Plan, pub.Keys, arr)
	}

	m.Events.AddTiming(logging.QueryInstallComplete, start, map[string]any{"published": len(published)})
	return nil
}

// SourceLogging binds a listener at Addr, accepts Count log-event
// connections tagged with Flavor, and republishes each decoded event as a
// row of its topic's relation, named `logs/{Name}/{Flavor}/{topic}` (spec
// §6 "Log-topic naming"). Granularity is accepted for wire compatibility
// with the original command but otherwise unused: this repo has no real
// timely/differential worker to batch events against.
type SourceLogging struct {
	Addr        string
	Flavor      string
	Count       int
	Granularity int64
	Name        string
}

func (c SourceLogging) Execute(m *Manager) error {
	topics, ok := logging.FlavorTopics(c.Flavor)
	if !ok {
		m.Events.Add(logging.Event{Name: logging.ErrorContract, Data: map[string]any{
			"error": fmt.Sprintf("SourceLogging: unknown flavor %q, ignoring", c.Flavor),
		}})
		return nil
	}

	relations := make(map[string]*arrange.Arrangement, len(topics))
	for _, topic := range topics {
		relName := logging.RelationName(c.Name, c.Flavor, topic.Name)
		relations[topic.Name] = m.Traces.GetOrCreate(sourcePlan(relName, topic.Arity()), nil)
	}

	stop, err := logging.ListenSource(c.Addr, c.Flavor, c.Count, func(topicName string, tuple datum.Tuple) {
		arr, ok := relations[topicName]
		if !ok {
			return
		}
		m.mu.Lock()
		_ = arr.MergeDiff(tuple, datum.Tuple{}, m.Traces.CurrentTime(), 1)
		m.mu.Unlock()
	})
	if err != nil {
		m.Events.Add(logging.Event{Name: logging.ErrorContract, Data: map[string]any{
			"error": fmt.Sprintf("SourceLogging: %v, continuing without logging", err),
		}})
		return nil
	}
	m.addLogSink(c.Name, stop)
	return nil
}

// Shutdown clears every input session and maintained arrangement,
// deregisters log sinks, and releases the arrangement engine (spec §4.8).
type Shutdown struct{}

func (c Shutdown) Execute(m *Manager) error {
	m.Events.Add(logging.Event{Name: logging.ShutdownBegin})
	m.Inputs.Clear()
	m.Traces.Clear()
	return m.Close()
}

