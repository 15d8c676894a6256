package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/snapshot"
	"github.com/roach88/logicgraph/internal/timer"
)

func linkKeys(e *Engine) []string {
	var out []string
	for _, l := range e.Links() {
		out = append(out, fmt.Sprintf("%d%v->%d%v", l.Source.Owner(), l.Source.Path(), l.Target.Owner(), l.Target.Path()))
	}
	return out
}

type nodeSummary struct {
	ID     NodeID
	Name   string
	Kind   Kind
	Ref    string
	Values map[string]string
}

func summarize(e *Engine) []nodeSummary {
	var out []nodeSummary
	for _, n := range e.Nodes() {
		s := nodeSummary{ID: n.ID(), Name: n.Name(), Kind: n.Kind(), Ref: n.Ref(), Values: map[string]string{}}
		for _, p := range n.Inputs().Primitives() {
			s.Values["in."+p.DisplayPath()] = property.Format(p.Value())
		}
		if n.Outputs() != nil {
			for _, p := range n.Outputs().Primitives() {
				s.Values["out."+p.DisplayPath()] = property.Format(p.Value())
			}
		}
		out = append(out, s)
	}
	return out
}

// buildSaveGraph creates one node of every kind, links and values.
func buildSaveGraph(t *testing.T, e *Engine, c calls, sink Sink) {
	t.Helper()
	a := mustScript(t, e, c, "a")
	tm, err := e.CreateTimer("timer")
	require.NoError(t, err)

	ts := mustFloats(t, e, "ts", 0, 1)
	kf, err := e.CreateDataArray("kf", []property.Value{property.Vec2i{0, 0}, property.Vec2i{10, -10}})
	require.NoError(t, err)
	anim, err := e.CreateAnimation("anim", []animation.Channel{{
		Name: "pos", Timestamps: ts, Keyframes: kf, Interpolation: animation.Step,
	}})
	require.NoError(t, err)

	b, err := e.CreateBinding("node", "scene_node", sink, property.Struct("IN",
		property.Prim("x", property.TypeFloat),
		property.Array("tags", 2, property.Prim("", property.TypeString)),
	))
	require.NoError(t, err)

	require.NoError(t, e.Link(out(t, e, a, "y"), in(t, e, b, "x")))
	require.NoError(t, e.Link(out(t, e, tm, timer.OutputTimeDelta), in(t, e, anim, animation.InputTimeDelta)))
	require.NoError(t, e.Set(in(t, e, a, "x"), property.Float(0.1)))
	require.NoError(t, e.Set(in(t, e, anim, animation.InputLoop), property.Bool(true)))
	require.NoError(t, e.Set(in(t, e, b, "tags.1"), property.String("h\u00e9llo")))
	require.NoError(t, e.Update())
}

func TestPersist_RoundTrip(t *testing.T) {
	c := calls{}
	src := newTestEngine(t)
	buildSaveGraph(t, src, c, &recordingSink{})
	data, err := src.Save()
	require.NoError(t, err)

	sink := &recordingSink{}
	dst := newTestEngine(t)
	resolver := testResolver{
		scripts: map[string]Script{"add_one": addOne(c, "a")},
		sinks:   map[string]Sink{"scene_node": sink},
	}
	require.NoError(t, dst.Load(data, resolver))

	if diff := cmp.Diff(summarize(src), summarize(dst)); diff != "" {
		t.Errorf("nodes differ after load (-saved +loaded):\n%s", diff)
	}
	assert.Equal(t, linkKeys(src), linkKeys(dst))
	require.Len(t, dst.DataArrays(), 2)
	assert.Equal(t, src.DataArrays()[1].Values(), dst.DataArrays()[1].Values())

	again, err := dst.Save()
	require.NoError(t, err)
	assert.Equal(t, data, again, "save after load is byte identical")

	// loaded nodes are dirty and the links are live
	require.NoError(t, dst.Update())
	require.NotEmpty(t, sink.batches)

	n, err := dst.CreateTimer("late")
	require.NoError(t, err)
	assert.Equal(t, NodeID(5), n.ID(), "ids continue after the saved counter")
}

func TestPersist_KeepsRetiredIDs(t *testing.T) {
	src := newTestEngine(t)
	a := mustScript(t, src, calls{}, "a")
	mustScript(t, src, calls{}, "b")
	require.NoError(t, src.Destroy(a))
	data, err := src.Save()
	require.NoError(t, err)

	dst := newTestEngine(t)
	require.NoError(t, dst.Load(data, testResolver{scripts: map[string]Script{"add_one": addOne(calls{}, "b")}}))
	n, ok := dst.FindNode("b")
	require.True(t, ok)
	assert.Equal(t, NodeID(2), n.ID())
	c := mustScript(t, dst, calls{}, "c")
	assert.Equal(t, NodeID(3), c.ID())
}

func TestPersist_SaveRefusesCycle(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")
	mustLink(t, e, a, b)
	mustLink(t, e, b, a)

	data, err := e.Save()
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, IsCycleError(err))
}

func TestPersist_FailedLoadLeavesGraphIntact(t *testing.T) {
	src := newTestEngine(t)
	buildSaveGraph(t, src, calls{}, nil)
	good, err := src.Save()
	require.NoError(t, err)

	future := snapshot.New()
	future.FormatVersion = "v2.0.0"
	future.NextID = 1
	futureData, err := snapshot.Encode(future)
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		resolver Resolver
		is       error
	}{
		{"truncated", good[:len(good)/2], nil, snapshot.ErrCorrupt},
		{"version too new", futureData, nil, snapshot.ErrIncompatibleVersion},
		{"no resolver", good, nil, errNoResolver},
		{"dangling script", good, testResolver{sinks: map[string]Sink{"scene_node": &recordingSink{}}}, nil},
		{"dangling sink", good, testResolver{scripts: map[string]Script{"add_one": addOne(calls{}, "a")}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := newTestEngine(t)
			keep := mustScript(t, dst, calls{}, "keep")
			before := summarize(dst)

			err := dst.Load(tt.data, tt.resolver)
			require.Error(t, err)
			assert.True(t, IsPersistenceError(err), "got %v", err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
			assert.Equal(t, before, summarize(dst))
			got, ok := dst.Node(keep.ID())
			require.True(t, ok)
			assert.Same(t, keep, got)
		})
	}
}
