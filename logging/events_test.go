package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectorDisabledByDefault(t *testing.T) {
	c := NewCollector(nil)
	c.Add(Event{Name: CommandReceived})
	require.Empty(t, c.Events())
}

func TestCollectorRecordsAndDispatches(t *testing.T) {
	var seen []Event
	c := NewCollector(func(e Event) { seen = append(seen, e) })

	c.Add(Event{Name: CommandReceived, Data: map[string]any{"command": "Shutdown"}})
	require.Len(t, c.Events(), 1)
	require.Len(t, seen, 1)
	require.Equal(t, CommandReceived, seen[0].Name)
}

func TestAddTimingSetsLatency(t *testing.T) {
	c := NewCollector(func(Event) {})
	start := time.Now()
	c.AddTiming(TimeAdvanced, start, nil)
	events := c.Events()
	require.Len(t, events, 1)
	require.GreaterOrEqual(t, events[0].Latency, time.Duration(0))
}
