package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T, sem Semantics) *Property {
	t.Helper()
	root, err := Build(Struct("IN",
		Prim("speed", TypeFloat),
		Prim("label", TypeString),
		Struct("transform",
			Prim("rotation", TypeVec3f),
			Prim("scale", TypeVec3f),
		),
		Array("weights", 3, Prim("", TypeInt32)),
	), sem, 7)
	require.NoError(t, err)
	return root
}

func TestValueSealed(t *testing.T) {
	var _ Value = Float(1)
	var _ Value = Int32(1)
	var _ Value = Int64(1)
	var _ Value = Bool(true)
	var _ Value = String("x")
	var _ Value = Vec2f{}
	var _ Value = Vec3f{}
	var _ Value = Vec4f{}
	var _ Value = Vec2i{}
	var _ Value = Vec3i{}
	var _ Value = Vec4i{}
}

func TestBuild_DefaultsAndShape(t *testing.T) {
	root := testTree(t, ScriptInput)

	assert.Equal(t, TypeStruct, root.Type())
	assert.Nil(t, root.Value())
	assert.Equal(t, 4, root.ChildCount())
	assert.Equal(t, NodeID(7), root.Owner())

	speed, ok := root.ChildByName("speed")
	require.True(t, ok)
	assert.Equal(t, Float(0), speed.Value())
	assert.Equal(t, NodeID(7), speed.Owner())

	weights, ok := root.ChildByName("weights")
	require.True(t, ok)
	assert.Equal(t, TypeArray, weights.Type())
	assert.Equal(t, 3, weights.ChildCount())
	elem, ok := weights.Child(2)
	require.True(t, ok)
	assert.Equal(t, Int32(0), elem.Value())
}

func TestBuild_InvalidDecl(t *testing.T) {
	tests := []struct {
		name string
		decl Decl
	}{
		{"duplicate child", Struct("IN", Prim("a", TypeFloat), Prim("a", TypeInt32))},
		{"unnamed struct child", Struct("IN", Prim("", TypeFloat))},
		{"primitive with children", Decl{Name: "x", Type: TypeFloat, Children: []Decl{Prim("y", TypeFloat)}}},
		{"empty array", Decl{Name: "arr", Type: TypeArray}},
		{"heterogeneous array", Decl{Name: "arr", Type: TypeArray, Children: []Decl{Prim("", TypeFloat), Prim("", TypeInt32)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.decl, ScriptInput, 1)
			assert.Error(t, err)
		})
	}
}

func TestProperty_ChildLookup(t *testing.T) {
	root := testTree(t, ScriptInput)

	_, ok := root.ChildByName("Speed")
	assert.False(t, ok, "lookup is case sensitive")

	_, ok = root.ChildByName("missing")
	assert.False(t, ok)

	_, ok = root.Child(4)
	assert.False(t, ok)
	_, ok = root.Child(-1)
	assert.False(t, ok)
}

func TestProperty_PathRoundTrip(t *testing.T) {
	root := testTree(t, ScriptInput)

	scale, ok := root.Find("transform.scale")
	require.True(t, ok)
	assert.Equal(t, []int{2, 1}, scale.Path())
	assert.Equal(t, "transform.scale", scale.DisplayPath())

	back, ok := root.Lookup(scale.Path())
	require.True(t, ok)
	assert.Same(t, scale, back)

	elem, ok := root.Find("weights.1")
	require.True(t, ok)
	assert.Equal(t, "weights.1", elem.DisplayPath())
	assert.Equal(t, []int{3, 1}, elem.Path())

	_, ok = root.Find("weights.x")
	assert.False(t, ok)
	_, ok = root.Lookup([]int{9})
	assert.False(t, ok)
	assert.Empty(t, root.Path())
}

func TestGet(t *testing.T) {
	root := testTree(t, ScriptInput)
	speed, _ := root.ChildByName("speed")

	v, ok := Get[Float](speed)
	assert.True(t, ok)
	assert.Equal(t, Float(0), v)

	_, ok = Get[Int32](speed)
	assert.False(t, ok, "wrong type")

	_, ok = Get[Float](root)
	assert.False(t, ok, "struct has no value")

	_, ok = Get[Float](nil)
	assert.False(t, ok)
}

func TestAssign_ScriptInputOnlyDirtiesOnChange(t *testing.T) {
	root := testTree(t, ScriptInput)
	speed, _ := root.ChildByName("speed")

	dirty, err := speed.Assign(Float(2.5))
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.True(t, speed.Changed())

	speed.ResetChanged()
	dirty, err = speed.Assign(Float(2.5))
	require.NoError(t, err)
	assert.False(t, dirty, "equal value does not dirty a script input")
	assert.False(t, speed.Changed())
}

func TestAssign_BindingAndAnimationInputsAlwaysDirty(t *testing.T) {
	for _, sem := range []Semantics{BindingInput, AnimationInput} {
		t.Run(sem.String(), func(t *testing.T) {
			root := testTree(t, sem)
			speed, _ := root.ChildByName("speed")

			dirty, err := speed.Assign(Float(0))
			require.NoError(t, err)
			assert.True(t, dirty)
			assert.True(t, speed.Changed())
		})
	}
}

func TestAssign_Errors(t *testing.T) {
	in := testTree(t, ScriptInput)
	out := testTree(t, ScriptOutput)

	speed, _ := in.ChildByName("speed")
	_, err := speed.Assign(Int32(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = speed.Assign(nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = in.Assign(Float(1))
	assert.ErrorIs(t, err, ErrNotPrimitive)

	outSpeed, _ := out.ChildByName("speed")
	_, err = outSpeed.Assign(Float(1))
	assert.ErrorIs(t, err, ErrOutputNotSettable)

	speed.SetLinked(true)
	_, err = speed.Assign(Float(1))
	assert.ErrorIs(t, err, ErrLinkedInput)
	assert.Equal(t, Float(0), speed.Value(), "failed assign leaves value")
}

func TestAssign_StringComparesBytewise(t *testing.T) {
	root := testTree(t, ScriptInput)
	label, _ := root.ChildByName("label")

	dirty, err := label.Assign(String("\u00e9"))
	require.NoError(t, err)
	assert.True(t, dirty)

	// decomposed form is a different byte sequence
	dirty, err = label.Assign(String("e\u0301"))
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestWrite_ReportsChange(t *testing.T) {
	out := testTree(t, ScriptOutput)
	rot, ok := out.Find("transform.rotation")
	require.True(t, ok)

	changed, err := rot.Write(Vec3f{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = rot.Write(Vec3f{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = rot.Write(Vec4f{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestReceive_IgnoresLinkFlag(t *testing.T) {
	root := testTree(t, ScriptInput)
	speed, _ := root.ChildByName("speed")
	speed.SetLinked(true)

	assert.True(t, speed.Receive(Float(3)))
	assert.False(t, speed.Receive(Float(3)))
	assert.Panics(t, func() { speed.Receive(Int32(3)) })
}

func TestPrimitivesAndDecl(t *testing.T) {
	root := testTree(t, ScriptInput)
	prims := root.Primitives()
	require.Len(t, prims, 7)
	assert.Equal(t, "speed", prims[0].Name())
	assert.Equal(t, "weights.2", prims[6].DisplayPath())

	rebuilt, err := Build(root.Decl(), ScriptInput, 1)
	require.NoError(t, err)
	assert.Equal(t, root.Decl(), rebuilt.Decl())
}

func TestResetChangedRecursive(t *testing.T) {
	root := testTree(t, ScriptInput)
	scale, _ := root.Find("transform.scale")
	_, err := scale.Assign(Vec3f{1, 1, 1})
	require.NoError(t, err)
	require.True(t, scale.Changed())

	root.ResetChanged()
	assert.False(t, scale.Changed())
}

func TestRoleFromSemantics(t *testing.T) {
	assert.Equal(t, RoleInput, ScriptInput.Role())
	assert.Equal(t, RoleInput, BindingInput.Role())
	assert.Equal(t, RoleInput, AnimationInput.Role())
	assert.Equal(t, RoleOutput, ScriptOutput.Role())
	assert.Equal(t, RoleOutput, AnimationOutput.Role())
}
