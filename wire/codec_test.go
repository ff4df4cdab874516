package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
)

func TestEncodeDecodeRoundTripEveryKind(t *testing.T) {
	edges := plan.Source("edges", 2)
	nodes := plan.Source("nodes", 1)
	joined := nodes.Join(edges, []plan.JoinKey{{Left: 0, Right: 0}}).Project([]int{1})
	query := joined.IntoRule("reach").IntoQuery().
		AddImport(edges, nil).
		AddPublish(joined, []int{0})

	envelopes := []Envelope{
		FromCreateInput("edges", 2, []datum.Tuple{{datum.Int(0), datum.Int(1)}}),
		FromUpdateInput("edges", []Update{{Tuple: datum.Tuple{datum.Int(1), datum.Int(2)}, TimeNanos: 5, Diff: 1}}),
		FromCloseInput("edges"),
		FromAdvanceTime(10),
		FromQuery(query),
		FromSourceLogging("127.0.0.1:9000", "timely", 2, 1000, "w0"),
		FromShutdown(),
	}

	var buf bytes.Buffer
	for _, env := range envelopes {
		require.NoError(t, Encode(&buf, env))
	}

	for _, want := range envelopes {
		got, err := Decode(&buf)
		require.NoError(t, err)
		require.Equal(t, want.Kind, got.Kind)
		if want.Kind == KindQuery {
			require.Equal(t, 1, len(got.Query.Rules))
			require.Equal(t, "reach", got.Query.Rules[0].Name)
			// Rehydration must restore structural keys so the decoded plan
			// compares equal to a freshly constructed equivalent one.
			rehydrated := plan.Rehydrate(got.Query.Rules[0].Plan)
			require.Equal(t, joined.Key(), rehydrated.Key())
		}
	}

	_, err := Decode(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestEnvelopeToCommandDispatchesEveryKind(t *testing.T) {
	cases := []Envelope{
		FromCreateInput("n", 1, nil),
		FromUpdateInput("n", nil),
		FromCloseInput("n"),
		FromAdvanceTime(0),
		FromQuery(plan.NewQuery()),
		FromSourceLogging("127.0.0.1:0", "timely", 1, 0, "n"),
		FromShutdown(),
	}
	for _, env := range cases {
		cmd := env.ToCommand()
		require.NotNil(t, cmd)
	}
}
