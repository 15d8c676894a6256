package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"), WithIDGenerator(testutil.NewSequenceGenerator()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

var (
	incIn  = property.Struct("IN", property.Prim("x", property.TypeFloat))
	incOut = property.Struct("OUT", property.Prim("y", property.TypeFloat))
)

var increment = engine.ScriptFunc(func(in, out *property.Property) error {
	x, _ := in.Find("x")
	v, _ := property.Get[property.Float](x)
	y, _ := out.Find("y")
	_, err := y.Write(v + 1)
	return err
})

type resolver struct{}

func (resolver) ResolveScript(ref string) (engine.Script, error) { return increment, nil }
func (resolver) ResolveSink(ref string) (engine.Sink, error)     { return nil, nil }

func newTestEngine() *engine.Engine {
	return engine.New(
		engine.WithUpdateReport(true),
		engine.WithTimerClock(testutil.NewDeterministicClock(1000)),
	)
}

// buildChain creates a -> b with a.x set to start.
func buildChain(t *testing.T, e *engine.Engine, start float32) {
	t.Helper()
	a, err := e.CreateScript("a", "increment", increment, incIn, incOut)
	require.NoError(t, err)
	b, err := e.CreateScript("b", "increment", increment, incIn, incOut)
	require.NoError(t, err)
	ay, _ := e.Output(a, "y")
	bx, _ := e.Input(b, "x")
	require.NoError(t, e.Link(ay, bx))
	ax, _ := e.Input(a, "x")
	require.NoError(t, e.Set(ax, property.Float(start)))
}

func encodedChain(t *testing.T, start float32) []byte {
	t.Helper()
	e := newTestEngine()
	buildChain(t, e, start)
	data, err := e.Save()
	require.NoError(t, err)
	return data
}
