package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/testutil"
)

// calls counts script evaluations per node name.
type calls map[string]int

var (
	addOneIn  = property.Struct("IN", property.Prim("x", property.TypeFloat))
	addOneOut = property.Struct("OUT", property.Prim("y", property.TypeFloat))
)

// addOne returns a script computing y = x + 1 that counts its calls
// under name.
func addOne(c calls, name string) Script {
	return ScriptFunc(func(in, out *property.Property) error {
		c[name]++
		x, _ := in.Find("x")
		v, _ := property.Get[property.Float](x)
		y, _ := out.Find("y")
		_, err := y.Write(v + 1)
		return err
	})
}

// failing returns a script that always fails.
func failing(c calls, name string) Script {
	return ScriptFunc(func(in, out *property.Property) error {
		c[name]++
		return errors.New("boom")
	})
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithUpdateReport(true),
		WithTimerClock(testutil.NewDeterministicClock(1000)),
	}
	return New(append(base, opts...)...)
}

func mustScript(t *testing.T, e *Engine, c calls, name string) *LogicNode {
	t.Helper()
	n, err := e.CreateScript(name, "add_one", addOne(c, name), addOneIn, addOneOut)
	require.NoError(t, err)
	return n
}

func in(t *testing.T, e *Engine, n *LogicNode, path string) *property.Property {
	t.Helper()
	p, ok := e.Input(n, path)
	require.True(t, ok, "input %s.%s", n.Name(), path)
	return p
}

func out(t *testing.T, e *Engine, n *LogicNode, path string) *property.Property {
	t.Helper()
	p, ok := e.Output(n, path)
	require.True(t, ok, "output %s.%s", n.Name(), path)
	return p
}

func mustLink(t *testing.T, e *Engine, from, to *LogicNode) {
	t.Helper()
	require.NoError(t, e.Link(out(t, e, from, "y"), in(t, e, to, "x")))
}

func floatOf(t *testing.T, p *property.Property) float32 {
	t.Helper()
	v, ok := property.Get[property.Float](p)
	require.True(t, ok)
	return float32(v)
}

func nodeNames(nodes []*LogicNode) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}

// testResolver resolves refs from fixed maps.
type testResolver struct {
	scripts map[string]Script
	sinks   map[string]Sink
}

func (r testResolver) ResolveScript(ref string) (Script, error) {
	if s, ok := r.scripts[ref]; ok {
		return s, nil
	}
	return nil, errors.New("no such script")
}

func (r testResolver) ResolveSink(ref string) (Sink, error) {
	if s, ok := r.sinks[ref]; ok {
		return s, nil
	}
	return nil, errors.New("no such sink")
}

func mustAnimation(t *testing.T, e *Engine, name string, ts, kf *animation.DataArray) *LogicNode {
	t.Helper()
	n, err := e.CreateAnimation(name, []animation.Channel{{
		Name:          "value",
		Timestamps:    ts,
		Keyframes:     kf,
		Interpolation: animation.Linear,
	}})
	require.NoError(t, err)
	return n
}

func mustFloats(t *testing.T, e *Engine, name string, vals ...float32) *animation.DataArray {
	t.Helper()
	data := make([]property.Value, len(vals))
	for i, v := range vals {
		data[i] = property.Float(v)
	}
	a, err := e.CreateDataArray(name, data)
	require.NoError(t, err)
	return a
}

// recordingSink stores every pushed batch and fails while reject is set.
type recordingSink struct {
	batches [][]Change
	reject  bool
}

func (s *recordingSink) Apply(changes []Change) error {
	if s.reject {
		return errors.New("invalid dimension")
	}
	s.batches = append(s.batches, changes)
	return nil
}
