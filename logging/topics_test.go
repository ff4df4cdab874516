package logging

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
)

func TestListenSourceRepublishesEvents(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	type received struct {
		topic string
		tuple datum.Tuple
	}
	results := make(chan received, 4)

	stop, err := ListenSource(address, "timely", 1, func(topic string, tuple datum.Tuple) {
		results <- received{topic: topic, tuple: tuple}
	})
	require.NoError(t, err)
	defer stop()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", address)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"topic": "shutdown",
		"fields": map[string]any{
			"addr_path": "0/1",
			"worker":    float64(2),
		},
	})
	require.NoError(t, err)
	_, err = conn.Write(append(payload, '\n'))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case r := <-results:
		require.Equal(t, "shutdown", r.topic)
		addr, ok := r.tuple[0].Str()
		require.True(t, ok)
		require.Equal(t, "0/1", addr)
		worker, ok := r.tuple[1].Int64()
		require.True(t, ok)
		require.Equal(t, int64(2), worker)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for republished event")
	}
}

func TestFlavorTopicsUnknown(t *testing.T) {
	_, ok := FlavorTopics("bogus")
	require.False(t, ok)
}

func TestRelationName(t *testing.T) {
	require.Equal(t, "logs/w0/timely/operates", RelationName("w0", "timely", "operates"))
}
