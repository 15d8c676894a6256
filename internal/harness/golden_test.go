package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/snapshot"
)

func TestTraceSnapshot_CanonicalShape(t *testing.T) {
	s := &TraceSnapshot{
		ScenarioName: "shape",
		Trace: []TraceEvent{
			{Frame: 1, Executed: nil, Skipped: []string{"a"}, Outputs: map[string]string{"a.x": "1"}},
			{Frame: 2, Executed: []string{"a"}, Skipped: nil, Pushed: []string{"b.y=1"}, Error: "RUNTIME_ERROR"},
		},
	}

	data, err := snapshot.MarshalCanonical(s.toCanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"shape","trace":[`+
			`{"executed":[],"frame":1,"outputs":{"a.x":"1"},"skipped":["a"]},`+
			`{"error":"RUNTIME_ERROR","executed":["a"],"frame":2,"outputs":{},"pushed":["b.y=1"],"skipped":[]}]}`,
		string(data))
}

func TestTraceSnapshot_Deterministic(t *testing.T) {
	s := &TraceSnapshot{
		ScenarioName: "maps",
		Trace: []TraceEvent{{Frame: 1, Outputs: map[string]string{
			"z.a": "1", "a.z": "2", "m.m": "3",
		}}},
	}

	first, err := snapshot.MarshalCanonical(s.toCanonicalMap())
	require.NoError(t, err)
	for range 10 {
		again, err := snapshot.MarshalCanonical(s.toCanonicalMap())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
