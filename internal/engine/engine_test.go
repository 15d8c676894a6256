package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/property"
)

func TestEngine_CreateScript(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")

	assert.Equal(t, NodeID(1), a.ID())
	assert.Equal(t, NodeID(2), b.ID())
	assert.Equal(t, KindScript, a.Kind())
	assert.True(t, a.IsDirty(), "new nodes evaluate on the first update")
	assert.Equal(t, []string{"a", "b"}, nodeNames(e.Nodes()))

	got, ok := e.FindNode("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	got, ok = e.Node(1)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestEngine_CreateScript_Invalid(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name string
		s    Script
		in   property.Decl
		out  property.Decl
	}{
		{"nil script", nil, addOneIn, addOneOut},
		{"primitive inputs", addOne(calls{}, "x"), property.Prim("IN", property.TypeFloat), addOneOut},
		{"duplicate child", addOne(calls{}, "x"), property.Struct("IN",
			property.Prim("a", property.TypeInt32), property.Prim("a", property.TypeInt32)), addOneOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.CreateScript("bad", "ref", tt.s, tt.in, tt.out)
			require.Error(t, err)
			assert.Nil(t, n)
			assert.True(t, IsConstructionError(err))
			assert.Len(t, e.Errors(), 1)
			assert.Empty(t, e.Nodes())
		})
	}
}

func TestEngine_InputLookup(t *testing.T) {
	e := newTestEngine(t)
	n := mustScript(t, e, calls{}, "a")
	_, ok := e.Input(n, "missing")
	assert.False(t, ok)
	_, ok = e.Input(n, "X")
	assert.False(t, ok, "lookup is case sensitive")

	b, err := e.CreateBinding("sink", "", nil, addOneIn)
	require.NoError(t, err)
	_, ok = e.Output(b, "y")
	assert.False(t, ok, "bindings have no outputs")
}

func TestEngine_LinkUnlinkRestoresState(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")
	require.NoError(t, e.Update())

	before := e.Links()
	src, tgt := out(t, e, a, "y"), in(t, e, b, "x")
	require.NoError(t, e.Link(src, tgt))
	assert.True(t, e.IsLinked(a))
	assert.True(t, e.IsPropertyLinked(tgt))
	assert.True(t, b.IsDirty(), "linking dirties the target node")

	require.NoError(t, e.Unlink(tgt))
	assert.Equal(t, before, e.Links())
	assert.False(t, e.IsLinked(a))
	assert.False(t, e.IsLinked(b))
	assert.False(t, e.st.deps.HasEdge(a.ID(), b.ID()))
}

func TestEngine_LinkDoesNotCopyUntilUpdate(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")
	require.NoError(t, e.Set(in(t, e, a, "x"), property.Float(4)))
	require.NoError(t, e.Update())
	assert.Equal(t, float32(5), floatOf(t, out(t, e, a, "y")))

	mustLink(t, e, a, b)
	assert.Equal(t, float32(0), floatOf(t, in(t, e, b, "x")))

	require.NoError(t, e.Update())
	assert.Equal(t, float32(5), floatOf(t, in(t, e, b, "x")))
	assert.Equal(t, float32(6), floatOf(t, out(t, e, b, "y")))

	require.NoError(t, e.Unlink(in(t, e, b, "x")))
	assert.Equal(t, float32(5), floatOf(t, in(t, e, b, "x")), "unlink keeps the target value")
}

func TestEngine_SecondLinkToSameTargetFails(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "A")
	b := mustScript(t, e, c, "B")
	cc := mustScript(t, e, c, "C")

	mustLink(t, e, a, b)
	err := e.Link(out(t, e, cc, "y"), in(t, e, b, "x"))
	require.Error(t, err)
	assert.True(t, IsLinkError(err))
	assert.Contains(t, err.Error(), "already linked")

	src, ok := e.st.links.Source(in(t, e, b, "x"))
	require.True(t, ok)
	assert.Same(t, out(t, e, a, "y"), src)
	assert.Len(t, e.Links(), 1)
}

func TestEngine_LinkErrors(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")
	other := New()
	foreign, err := other.CreateScript("f", "add_one", addOne(c, "f"), addOneIn, addOneOut)
	require.NoError(t, err)

	tests := []struct {
		name   string
		src    *property.Property
		tgt    *property.Property
		lookup bool
	}{
		{"same node", out(t, e, a, "y"), in(t, e, a, "x"), false},
		{"source is input", in(t, e, a, "x"), in(t, e, b, "x"), false},
		{"target is output", out(t, e, a, "y"), out(t, e, b, "y"), false},
		{"struct endpoint", a.Outputs(), b.Inputs(), false},
		{"foreign property", foreign.Outputs(), in(t, e, b, "x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Link(tt.src, tt.tgt)
			require.Error(t, err)
			if tt.lookup {
				assert.True(t, IsLookupError(err), "got %v", err)
			} else {
				assert.True(t, IsLinkError(err), "got %v", err)
			}
			assert.Empty(t, e.Links())
		})
	}
}

func TestEngine_UnlinkWithoutLink(t *testing.T) {
	e := newTestEngine(t)
	a := mustScript(t, e, calls{}, "a")
	err := e.Unlink(in(t, e, a, "x"))
	require.Error(t, err)
	assert.True(t, IsLinkError(err))
}

func TestEngine_TypeMismatchLink(t *testing.T) {
	e := newTestEngine(t)
	a := mustScript(t, e, calls{}, "a")
	b, err := e.CreateScript("b", "noop", ScriptFunc(func(_, _ *property.Property) error { return nil }),
		property.Struct("IN", property.Prim("n", property.TypeInt32)), property.Struct("OUT"))
	require.NoError(t, err)
	err = e.Link(out(t, e, a, "y"), in(t, e, b, "n"))
	require.Error(t, err)
	assert.True(t, IsLinkError(err))
}

func TestEngine_SortedNodesIsTopological(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	d := mustScript(t, e, c, "d")
	n3 := mustScript(t, e, c, "c")
	n2 := mustScript(t, e, c, "b")
	n1 := mustScript(t, e, c, "a")
	mustLink(t, e, n1, n2)
	mustLink(t, e, n2, n3)

	order, err := e.SortedNodes()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"d", "a", "b", "c"}, nodeNames(order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	again, err := e.SortedNodes()
	require.NoError(t, err)
	assert.Equal(t, nodeNames(order), nodeNames(again), "order is stable without graph changes")

	require.NoError(t, e.Set(in(t, e, d, "x"), property.Float(3)))
	again, err = e.SortedNodes()
	require.NoError(t, err)
	assert.Equal(t, nodeNames(order), nodeNames(again), "value changes do not reorder")
}

func TestEngine_Set(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	a := mustScript(t, e, c, "a")
	b := mustScript(t, e, c, "b")
	mustLink(t, e, a, b)
	require.NoError(t, e.Update())
	assert.False(t, a.IsDirty())

	require.NoError(t, e.Set(in(t, e, a, "x"), property.Float(0)))
	assert.False(t, a.IsDirty(), "equal script input does not dirty")

	require.NoError(t, e.Set(in(t, e, a, "x"), property.Float(1)))
	assert.True(t, a.IsDirty())

	tests := []struct {
		name string
		p    *property.Property
		v    property.Value
		node *LogicNode
	}{
		{"output", out(t, e, a, "y"), property.Float(1), a},
		{"linked input", in(t, e, b, "x"), property.Float(1), b},
		{"type mismatch", in(t, e, a, "x"), property.Int32(1), a},
		{"struct", a.Inputs(), property.Float(1), a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Set(tt.p, tt.v)
			require.Error(t, err)
			assert.True(t, IsAssignmentError(err), "got %v", err)
			require.Len(t, e.Errors(), 1)
			assert.Equal(t, tt.node.ID(), e.Errors()[0].NodeID)
		})
	}
}

func TestEngine_ErrorsClearedByNextCall(t *testing.T) {
	e := newTestEngine(t)
	a := mustScript(t, e, calls{}, "a")
	require.Error(t, e.Set(out(t, e, a, "y"), property.Float(1)))
	assert.Len(t, e.Errors(), 1)

	require.NoError(t, e.Update())
	assert.Empty(t, e.Errors())
}

func TestEngine_DestroySourceOfTwoLinks(t *testing.T) {
	e := newTestEngine(t)
	c := calls{}
	src := mustScript(t, e, c, "src")
	t1 := mustScript(t, e, c, "t1")
	t2 := mustScript(t, e, c, "t2")
	mustLink(t, e, src, t1)
	mustLink(t, e, src, t2)
	require.NoError(t, e.Set(in(t, e, src, "x"), property.Float(1)))
	require.NoError(t, e.Update())
	assert.Equal(t, float32(2), floatOf(t, in(t, e, t1, "x")))

	require.NoError(t, e.Destroy(src))
	assert.Empty(t, e.Links())
	assert.False(t, e.IsLinked(t1))
	assert.False(t, e.IsLinked(t2))
	assert.False(t, e.IsPropertyLinked(in(t, e, t1, "x")))
	assert.Equal(t, float32(2), floatOf(t, in(t, e, t1, "x")), "former targets keep their values")
	assert.Equal(t, []string{"t1", "t2"}, nodeNames(e.Nodes()))

	// the former target inputs are settable again
	require.NoError(t, e.Set(in(t, e, t1, "x"), property.Float(10)))
	require.NoError(t, e.Update())
	assert.Equal(t, float32(11), floatOf(t, out(t, e, t1, "y")))

	err := e.Destroy(src)
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
}

func TestEngine_DestroyedNodeIDNotReused(t *testing.T) {
	e := newTestEngine(t)
	a := mustScript(t, e, calls{}, "a")
	require.NoError(t, e.Destroy(a))
	b := mustScript(t, e, calls{}, "b")
	assert.Equal(t, NodeID(2), b.ID())

	err := e.Set(in(t, e, a, "x"), property.Float(1))
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
}

func TestEngine_DestroyDataArray(t *testing.T) {
	e := newTestEngine(t)
	ts, err := e.CreateDataArray("ts", []property.Value{property.Float(0), property.Float(1)})
	require.NoError(t, err)
	kf, err := e.CreateDataArray("kf", []property.Value{property.Float(0), property.Float(10)})
	require.NoError(t, err)
	anim := mustAnimation(t, e, "anim", ts, kf)

	err = e.DestroyDataArray(ts)
	require.Error(t, err)
	assert.True(t, IsInUseError(err))
	assert.Contains(t, err.Error(), "anim")
	assert.Len(t, e.DataArrays(), 2)

	require.NoError(t, e.Destroy(anim))
	require.NoError(t, e.DestroyDataArray(ts))
	_, ok := e.FindDataArray("ts")
	assert.False(t, ok)

	err = e.DestroyDataArray(ts)
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
}

func TestEngine_CreateDataArray_Invalid(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateDataArray("empty", nil)
	require.Error(t, err)
	assert.True(t, IsConstructionError(err))

	_, err = e.CreateDataArray("mixed", []property.Value{property.Float(0), property.Int32(1)})
	require.Error(t, err)
	assert.True(t, IsConstructionError(err))

	_, err = e.CreateDataArray("strings", []property.Value{property.String("a")})
	require.Error(t, err)
	assert.True(t, IsConstructionError(err))
}
