package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/logicgraph/internal/compiler"
	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/store"
	"github.com/roach88/logicgraph/internal/testutil"
)

const defaultClockStepUS = 1000

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic timer clock and record ids.
type Harness struct {
	engine   *engine.Engine
	store    *store.Store
	journal  *store.Journal
	registry *compiler.Registry
	logger   *slog.Logger

	// pushed collects binding batches of the running update.
	pushed []string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh engine and a fresh in-memory store.
//
// Execution flow:
//  1. Load and validate the CUE graph declarations
//  2. Build the graph with recording sinks for every binding
//  3. Execute steps, journaling every update report
//  4. Evaluate assertions over the trace
//
// The returned error covers setup problems and steps that cannot run
// (unknown nodes, bad values). Expectation mismatches are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	g, err := compiler.LoadDir(scenario.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequenceGenerator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	step := scenario.TimerClockStepUS
	if step == 0 {
		step = defaultClockStepUS
	}
	h := &Harness{
		store:    st,
		registry: compiler.NewRegistry(),
		logger:   slog.New(slog.DiscardHandler), // Suppress logs in tests
	}
	h.engine = engine.New(
		engine.WithLogger(h.logger),
		engine.WithTimerClock(testutil.NewDeterministicClock(step)),
		engine.WithUpdateReport(true),
	)
	if scenario.DirtyTracking != nil {
		h.engine.SetDirtyTracking(*scenario.DirtyTracking)
	}

	for _, n := range g.Nodes {
		if n.Kind == compiler.KindBinding {
			h.registry.RegisterSink(n.Sink, h.recordingSink(n.Name))
		}
	}
	if err := compiler.Build(h.engine, g, h.registry); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	h.journal, err = st.NewJournal(ctx, scenario.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to start journal: %w", err)
	}

	result := NewResult()
	result.RunID = h.journal.RunID()
	for i, s := range scenario.Steps {
		if err := h.executeStep(ctx, i, s, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(result.Trace, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

// recordingSink returns a sink that records batches of the named binding
// into the running update.
func (h *Harness) recordingSink(node string) engine.Sink {
	return engine.SinkFunc(func(changes []engine.Change) error {
		for _, c := range changes {
			h.pushed = append(h.pushed, fmt.Sprintf("%s.%s=%s", node, c.Path, property.Format(c.Value)))
		}
		return nil
	})
}

func (h *Harness) executeStep(ctx context.Context, index int, s Step, result *Result) error {
	label := fmt.Sprintf("steps[%d]", index)
	switch {
	case s.Set != nil:
		p, err := h.property(s.Set.Node, s.Set.Property, true)
		if err != nil {
			return err
		}
		v, err := toValue(s.Set.Value, p.Type())
		if err != nil {
			return fmt.Errorf("set %s.%s: %w", s.Set.Node, s.Set.Property, err)
		}
		checkError(result, label+" set", h.engine.Set(p, v), s.Set.ExpectError)

	case s.Link != nil:
		src, err := h.endpoint(s.Link.From, false)
		if err != nil {
			return err
		}
		tgt, err := h.endpoint(s.Link.To, true)
		if err != nil {
			return err
		}
		checkError(result, label+" link", h.engine.Link(src, tgt), s.Link.ExpectError)

	case s.Unlink != nil:
		tgt, err := h.endpoint(s.Unlink.To, true)
		if err != nil {
			return err
		}
		checkError(result, label+" unlink", h.engine.Unlink(tgt), s.Unlink.ExpectError)

	case s.Update != nil:
		count := max(s.Update.Count, 1)
		for range count {
			if err := h.update(ctx, label, s.Update.ExpectError, result); err != nil {
				return err
			}
		}

	case s.Expect != nil:
		return h.expect(label, s.Expect, result)

	case s.Checkpoint != nil:
		if _, err := h.store.Checkpoint(ctx, h.engine, s.Checkpoint.Name); err != nil {
			return err
		}

	case s.Restore != nil:
		if _, err := h.store.Restore(ctx, h.engine, s.Restore.Name, h.registry); err != nil {
			return err
		}
	}
	return nil
}

// update runs one engine update, records its trace event and journals
// the report.
func (h *Harness) update(ctx context.Context, label, expectError string, result *Result) error {
	h.pushed = nil
	err := h.engine.Update()
	checkError(result, label+" update", err, expectError)

	rep := h.engine.LastReport()
	ev := TraceEvent{
		Frame:    rep.Frame,
		Executed: rep.ExecutedNames(),
		Skipped:  rep.SkippedNames(),
		Pushed:   h.pushed,
		Outputs:  h.outputs(),
	}
	if code := errorCode(err); code != "" {
		ev.Error = code
	}
	result.AddUpdateTrace(ev)
	return h.journal.Record(ctx, h.engine)
}

func (h *Harness) outputs() map[string]string {
	out := make(map[string]string)
	for _, n := range h.engine.Nodes() {
		if n.Outputs() == nil {
			continue
		}
		for _, p := range n.Outputs().Primitives() {
			out[n.Name()+"."+p.DisplayPath()] = property.Format(p.Value())
		}
	}
	return out
}

func (h *Harness) expect(label string, x *ExpectStep, result *Result) error {
	p, err := h.property(x.Node, x.Property, x.Input)
	if err != nil {
		return err
	}
	want, err := toValue(x.Value, p.Type())
	if err != nil {
		return fmt.Errorf("expect %s.%s: %w", x.Node, x.Property, err)
	}
	if !valuesMatch(want, p.Value(), x.Tolerance) {
		result.AddError(fmt.Sprintf("%s expect %s.%s: expected %s, got %s",
			label, x.Node, x.Property, property.Format(want), property.Format(p.Value())))
	}
	return nil
}

func (h *Harness) property(node, path string, input bool) (*property.Property, error) {
	n, ok := h.engine.FindNode(node)
	if !ok {
		return nil, fmt.Errorf("unknown node %q", node)
	}
	var p *property.Property
	if input {
		p, ok = h.engine.Input(n, path)
	} else {
		p, ok = h.engine.Output(n, path)
	}
	if !ok {
		return nil, fmt.Errorf("node %q has no property %q", node, path)
	}
	return p, nil
}

func (h *Harness) endpoint(ref string, input bool) (*property.Property, error) {
	ep, err := compiler.ParseEndpoint(ref)
	if err != nil {
		return nil, err
	}
	return h.property(ep.Node, ep.Path, input)
}

// checkError records a mismatch between err and the expected engine error
// code ("" means success).
func checkError(result *Result, label string, err error, expect string) {
	got := errorCode(err)
	switch {
	case expect == "" && err != nil:
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", label, err))
	case expect != "" && got != expect:
		result.AddError(fmt.Sprintf("%s: expected error %s, got %q", label, expect, got))
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *engine.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "UNKNOWN"
}

// valuesMatch compares numeric values component-wise within tolerance
// and everything else exactly.
func valuesMatch(want, got property.Value, tolerance float64) bool {
	if want.Type() != got.Type() {
		return false
	}
	w, g := property.Components(want), property.Components(got)
	if w == nil || tolerance == 0 {
		return want == got
	}
	for i := range w {
		if math.Abs(w[i]-g[i]) > tolerance {
			return false
		}
	}
	return true
}

// toValue converts a decoded YAML scalar or list to a value of type t.
func toValue(raw any, t property.Type) (property.Value, error) {
	lit, err := toLiteral(raw)
	if err != nil {
		return nil, err
	}
	return lit.As(t)
}

func toLiteral(raw any) (compiler.Literal, error) {
	switch v := raw.(type) {
	case bool:
		return compiler.Literal{Bool: &v}, nil
	case string:
		return compiler.Literal{Text: &v}, nil
	case int:
		return compiler.Literal{Numbers: []float64{float64(v)}, Exact: []int64{int64(v)}}, nil
	case int64:
		return compiler.Literal{Numbers: []float64{float64(v)}, Exact: []int64{v}}, nil
	case uint64:
		if v > math.MaxInt64 {
			return compiler.Literal{}, fmt.Errorf("%d overflows int64", v)
		}
		return compiler.Literal{Numbers: []float64{float64(v)}, Exact: []int64{int64(v)}}, nil
	case float64:
		return compiler.Literal{Numbers: []float64{v}}, nil
	case []any:
		var lit compiler.Literal
		exact := true
		for _, e := range v {
			c, err := toLiteral(e)
			if err != nil {
				return compiler.Literal{}, err
			}
			if len(c.Numbers) != 1 {
				return compiler.Literal{}, fmt.Errorf("vector components must be numbers")
			}
			lit.Numbers = append(lit.Numbers, c.Numbers[0])
			if len(c.Exact) == 1 {
				lit.Exact = append(lit.Exact, c.Exact[0])
			} else {
				exact = false
			}
		}
		if !exact {
			lit.Exact = nil
		}
		return lit, nil
	}
	return compiler.Literal{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
