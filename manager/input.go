// Package manager owns the long-lived server state a worker loop
// dispatches commands against: input sessions, maintained traces, and the
// command dispatch loop itself (spec §4.7-4.8).
package manager

import (
	"fmt"

	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/ltime"
	"github.com/wbrown/flowbase/plan"
)

// pendingUpdate is one buffered update awaiting the next Flush.
type pendingUpdate struct {
	tuple datum.Tuple
	time  ltime.Time
	diff  int64
}

// InputSession is a single named input's write handle: updates are
// buffered by UpdateAt and only become visible to queries once Flush
// applies them to the underlying arrangement, which AdvanceTime triggers
// (spec §4.7, mirroring InputSession::update_at/advance_to/flush).
type InputSession struct {
	name    string
	arity   int
	arr     *arrange.Arrangement
	current ltime.Time
	pending []pendingUpdate
}

// NewInputSession constructs a session over arr, the arrangement backing
// this input's current contents.
func NewInputSession(name string, arity int, arr *arrange.Arrangement) *InputSession {
	return &InputSession{name: name, arity: arity, arr: arr}
}

// UpdateAt buffers one update at the given logical time.
func (s *InputSession) UpdateAt(tuple datum.Tuple, time ltime.Time, diff int64) error {
	if len(tuple) != s.arity {
		return fmt.Errorf("manager: input %q expects arity %d, got tuple of arity %d", s.name, s.arity, len(tuple))
	}
	s.pending = append(s.pending, pendingUpdate{tuple: tuple, time: time, diff: diff})
	return nil
}

// AdvanceTo records the session's new target time.
func (s *InputSession) AdvanceTo(time ltime.Time) {
	s.current = ltime.Max(s.current, time)
}

// Flush applies every buffered update to the underlying arrangement at
// its own recorded time and clears the buffer. Each update keeps the
// time it was submitted at rather than being applied "now": a retraction
// submitted for an earlier time must not appear to have happened before
// updates already flushed at a later time (spec §3 Arrangement, §8
// Scenario D).
func (s *InputSession) Flush() error {
	for _, u := range s.pending {
		if err := s.arr.MergeDiff(u.tuple, datum.Tuple{}, int64(u.time.Duration()), u.diff); err != nil {
			return fmt.Errorf("manager: flushing input %q: %w", s.name, err)
		}
	}
	s.pending = s.pending[:0]
	return nil
}

// InputManager owns every named input session the server has created.
type InputManager struct {
	sessions map[string]*InputSession
}

// NewInputManager constructs an empty input manager.
func NewInputManager() *InputManager {
	return &InputManager{sessions: make(map[string]*InputSession)}
}

// Insert registers a new named input session.
func (m *InputManager) Insert(name string, session *InputSession) {
	m.sessions[name] = session
}

// Get retrieves a named input session, if one exists.
func (m *InputManager) Get(name string) (*InputSession, bool) {
	s, ok := m.sessions[name]
	return s, ok
}

// Close removes a named input session (spec §4.7 "CloseInput").
func (m *InputManager) Close(name string) {
	delete(m.sessions, name)
}

// AdvanceTime advances and flushes every maintained session.
func (m *InputManager) AdvanceTime(time ltime.Time) error {
	for name, session := range m.sessions {
		session.AdvanceTo(time)
		if err := session.Flush(); err != nil {
			return fmt.Errorf("manager: advancing input %q: %w", name, err)
		}
	}
	return nil
}

// Clear removes every input session, used by Shutdown.
func (m *InputManager) Clear() {
	m.sessions = make(map[string]*InputSession)
}

// sourcePlan is the Source(name, arity) plan an input's own contents are
// published under in the TraceManager.
func sourcePlan(name string, arity int) *plan.Plan { return plan.Source(name, arity) }
