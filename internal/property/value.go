package property

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface over the primitive property value types.
// Only the types declared in this file implement it.
type Value interface {
	Type() Type
	propertyValue() // sealed
}

// Float is a 32-bit floating point value.
type Float float32

// Int32 is a 32-bit signed integer value.
type Int32 int32

// Int64 is a 64-bit signed integer value.
type Int64 int64

// Bool is a boolean value.
type Bool bool

// String is a UTF-8 string value. Equality is bytewise.
type String string

// Vec2f, Vec3f and Vec4f are fixed-size float32 vectors.
type (
	Vec2f [2]float32
	Vec3f [3]float32
	Vec4f [4]float32
)

// Vec2i, Vec3i and Vec4i are fixed-size int32 vectors.
type (
	Vec2i [2]int32
	Vec3i [3]int32
	Vec4i [4]int32
)

func (Float) Type() Type  { return TypeFloat }
func (Int32) Type() Type  { return TypeInt32 }
func (Int64) Type() Type  { return TypeInt64 }
func (Bool) Type() Type   { return TypeBool }
func (String) Type() Type { return TypeString }
func (Vec2f) Type() Type  { return TypeVec2f }
func (Vec3f) Type() Type  { return TypeVec3f }
func (Vec4f) Type() Type  { return TypeVec4f }
func (Vec2i) Type() Type  { return TypeVec2i }
func (Vec3i) Type() Type  { return TypeVec3i }
func (Vec4i) Type() Type  { return TypeVec4i }

func (Float) propertyValue()  {}
func (Int32) propertyValue()  {}
func (Int64) propertyValue()  {}
func (Bool) propertyValue()   {}
func (String) propertyValue() {}
func (Vec2f) propertyValue()  {}
func (Vec3f) propertyValue()  {}
func (Vec4f) propertyValue()  {}
func (Vec2i) propertyValue()  {}
func (Vec3i) propertyValue()  {}
func (Vec4i) propertyValue()  {}

// Zero returns the default value for a primitive type, or nil for Struct
// and Array.
func Zero(t Type) Value {
	switch t {
	case TypeFloat:
		return Float(0)
	case TypeVec2f:
		return Vec2f{}
	case TypeVec3f:
		return Vec3f{}
	case TypeVec4f:
		return Vec4f{}
	case TypeInt32:
		return Int32(0)
	case TypeInt64:
		return Int64(0)
	case TypeVec2i:
		return Vec2i{}
	case TypeVec3i:
		return Vec3i{}
	case TypeVec4i:
		return Vec4i{}
	case TypeBool:
		return Bool(false)
	case TypeString:
		return String("")
	default:
		return nil
	}
}

// Components returns the scalar components of a numeric value as float64.
// Integer components convert exactly. Bool and String return nil.
func Components(v Value) []float64 {
	switch val := v.(type) {
	case Float:
		return []float64{float64(val)}
	case Int32:
		return []float64{float64(val)}
	case Int64:
		return []float64{float64(val)}
	case Vec2f:
		return []float64{float64(val[0]), float64(val[1])}
	case Vec3f:
		return []float64{float64(val[0]), float64(val[1]), float64(val[2])}
	case Vec4f:
		return []float64{float64(val[0]), float64(val[1]), float64(val[2]), float64(val[3])}
	case Vec2i:
		return []float64{float64(val[0]), float64(val[1])}
	case Vec3i:
		return []float64{float64(val[0]), float64(val[1]), float64(val[2])}
	case Vec4i:
		return []float64{float64(val[0]), float64(val[1]), float64(val[2]), float64(val[3])}
	default:
		return nil
	}
}

// FromComponents builds a numeric value of type t from scalar components.
// Integer types round half away from zero.
func FromComponents(t Type, c []float64) (Value, error) {
	if len(c) != t.ComponentCount() {
		return nil, fmt.Errorf("type %s needs %d components, got %d", t, t.ComponentCount(), len(c))
	}
	f := func(i int) float32 { return float32(c[i]) }
	n := func(i int) int32 { return int32(math.Round(c[i])) }
	switch t {
	case TypeFloat:
		return Float(f(0)), nil
	case TypeVec2f:
		return Vec2f{f(0), f(1)}, nil
	case TypeVec3f:
		return Vec3f{f(0), f(1), f(2)}, nil
	case TypeVec4f:
		return Vec4f{f(0), f(1), f(2), f(3)}, nil
	case TypeInt32:
		return Int32(n(0)), nil
	case TypeInt64:
		return Int64(int64(math.Round(c[0]))), nil
	case TypeVec2i:
		return Vec2i{n(0), n(1)}, nil
	case TypeVec3i:
		return Vec3i{n(0), n(1), n(2)}, nil
	case TypeVec4i:
		return Vec4i{n(0), n(1), n(2), n(3)}, nil
	default:
		return nil, fmt.Errorf("type %s has no numeric components", t)
	}
}

// Format renders a value for logs and traces.
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<none>"
	case String:
		return fmt.Sprintf("%q", string(val))
	case Float:
		return fmt.Sprintf("%g", float32(val))
	case Bool, Int32, Int64:
		return fmt.Sprintf("%v", val)
	default:
		parts := make([]string, 0, 4)
		for _, c := range Components(v) {
			if v.Type().IsFloatBased() {
				parts = append(parts, strconv.FormatFloat(c, 'g', -1, 32))
			} else {
				parts = append(parts, strconv.FormatInt(int64(c), 10))
			}
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
}
