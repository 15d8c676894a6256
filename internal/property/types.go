package property

import (
	"fmt"
	"strings"
)

// Type identifies the shape and value type of a property.
type Type int

const (
	TypeFloat Type = iota
	TypeVec2f
	TypeVec3f
	TypeVec4f
	TypeInt32
	TypeInt64
	TypeVec2i
	TypeVec3i
	TypeVec4i
	TypeBool
	TypeString
	TypeStruct
	TypeArray
)

var typeNames = [...]string{
	TypeFloat:  "Float",
	TypeVec2f:  "Vec2f",
	TypeVec3f:  "Vec3f",
	TypeVec4f:  "Vec4f",
	TypeInt32:  "Int32",
	TypeInt64:  "Int64",
	TypeVec2i:  "Vec2i",
	TypeVec3i:  "Vec3i",
	TypeVec4i:  "Vec4i",
	TypeBool:   "Bool",
	TypeString: "String",
	TypeStruct: "Struct",
	TypeArray:  "Array",
}

// String returns the display name of the type ("Float", "Vec3i", ...).
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// IsPrimitive reports whether properties of this type hold a value.
func (t Type) IsPrimitive() bool {
	return t != TypeStruct && t != TypeArray && t >= 0 && int(t) < len(typeNames)
}

// ComponentCount returns the number of scalar components of a primitive
// numeric type (1 for scalars, N for vecN types, 0 otherwise).
func (t Type) ComponentCount() int {
	switch t {
	case TypeFloat, TypeInt32, TypeInt64:
		return 1
	case TypeVec2f, TypeVec2i:
		return 2
	case TypeVec3f, TypeVec3i:
		return 3
	case TypeVec4f, TypeVec4i:
		return 4
	default:
		return 0
	}
}

// IsFloatBased reports whether the type's components are float32.
func (t Type) IsFloatBased() bool {
	switch t {
	case TypeFloat, TypeVec2f, TypeVec3f, TypeVec4f:
		return true
	}
	return false
}

// ParseType resolves a type name. Matching is case-insensitive so both
// "vec3f" (declaration files) and "Vec3f" (String output) are accepted.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown property type %q", name)
}
