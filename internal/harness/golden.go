package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/logicgraph/internal/snapshot"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Empty executed/skipped lists stay in the output.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		outputs := make(map[string]any, len(ev.Outputs))
		for k, v := range ev.Outputs {
			outputs[k] = v
		}
		eventMap := map[string]any{
			"frame":    int64(ev.Frame),
			"executed": stringList(ev.Executed),
			"skipped":  stringList(ev.Skipped),
			"outputs":  outputs,
		}
		if len(ev.Pushed) > 0 {
			eventMap["pushed"] = stringList(ev.Pushed)
		}
		if ev.Error != "" {
			eventMap["error"] = ev.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snap := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	traceJSON, err := snapshot.MarshalCanonical(snap.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
