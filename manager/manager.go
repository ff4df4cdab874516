package manager

import (
	"fmt"
	"sync"

	"github.com/wbrown/flowbase/arrange"
	"github.com/wbrown/flowbase/logging"
)

// Manager owns every piece of long-lived server state: the input sessions,
// the cross-query arrangement cache, and the log-event sinks a
// SourceLogging command may have bound. Exactly one goroutine at a time
// ever calls Dispatch (spec §5 "single-worker cooperative at the command
// level"); Manager's only internal lock is mu, which guards its log sinks
// against a concurrent Shutdown and serializes the arrangement merges made
// by SourceLogging's listener goroutines.
type Manager struct {
	engine *arrange.Engine
	Inputs *InputManager
	Traces *arrange.TraceManager
	Events *logging.Collector

	mu       sync.Mutex
	logSinks map[string]func()
}

// New constructs a Manager backed by a fresh in-memory arrangement engine.
// A nil handler disables event collection entirely.
func New(handler logging.Handler) (*Manager, error) {
	engine, err := arrange.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("manager: failed to start: %w", err)
	}
	return &Manager{
		engine:   engine,
		Inputs:   NewInputManager(),
		Traces:   arrange.NewTraceManager(engine),
		Events:   logging.NewCollector(handler),
		logSinks: make(map[string]func()),
	}, nil
}

// Dispatch executes one command to completion. Commands never run
// concurrently with each other on the same Manager (spec §5); callers
// that accept connections from multiple clients must serialize calls to
// Dispatch themselves (cmd/flowbased does this with a single worker
// goroutine reading off a shared channel).
func (m *Manager) Dispatch(cmd Command) error {
	m.Events.Add(logging.Event{Name: logging.CommandReceived, Data: map[string]any{"command": fmt.Sprintf("%T", cmd)}})
	return cmd.Execute(m)
}

// addLogSink registers a cleanup function to run on Shutdown, keyed by the
// SourceLogging command's name so a repeated SourceLogging under the same
// name replaces (and stops) the prior listener.
func (m *Manager) addLogSink(name string, stop func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prior, ok := m.logSinks[name]; ok {
		prior()
	}
	m.logSinks[name] = stop
}

// Close stops every log sink and releases the underlying arrangement
// engine. Shutdown (the Command) calls this after clearing sessions and
// traces.
func (m *Manager) Close() error {
	m.mu.Lock()
	for _, stop := range m.logSinks {
		stop()
	}
	m.logSinks = make(map[string]func())
	m.mu.Unlock()
	return m.engine.Close()
}
