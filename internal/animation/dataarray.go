package animation

import (
	"fmt"

	"github.com/roach88/logicgraph/internal/property"
)

// DataArray is an immutable, non-empty, homogeneous sequence of values.
type DataArray struct {
	name string
	typ  property.Type
	data []property.Value
	refs int
}

// CanStore reports whether DataArrays can hold elements of type t.
func CanStore(t property.Type) bool {
	switch t {
	case property.TypeFloat, property.TypeVec2f, property.TypeVec3f, property.TypeVec4f,
		property.TypeInt32, property.TypeVec2i, property.TypeVec3i, property.TypeVec4i:
		return true
	}
	return false
}

// NewDataArray copies data into a new DataArray.
func NewDataArray(name string, data []property.Value) (*DataArray, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot create DataArray '%s' with empty data", name)
	}
	if data[0] == nil {
		return nil, fmt.Errorf("cannot create DataArray '%s': element 0 is nil", name)
	}
	t := data[0].Type()
	if !CanStore(t) {
		return nil, fmt.Errorf("cannot create DataArray '%s': unsupported element type %s", name, t)
	}
	for i, v := range data {
		if v == nil || v.Type() != t {
			return nil, fmt.Errorf("cannot create DataArray '%s': element %d is not of type %s", name, i, t)
		}
	}
	cp := make([]property.Value, len(data))
	copy(cp, data)
	return &DataArray{name: name, typ: t, data: cp}, nil
}

// Floats is a convenience constructor for float arrays.
func Floats(name string, data ...float32) (*DataArray, error) {
	vals := make([]property.Value, len(data))
	for i, f := range data {
		vals[i] = property.Float(f)
	}
	return NewDataArray(name, vals)
}

func (a *DataArray) Name() string        { return a.name }
func (a *DataArray) Type() property.Type { return a.typ }
func (a *DataArray) Len() int            { return len(a.data) }

// At returns element i.
func (a *DataArray) At(i int) property.Value { return a.data[i] }

// Values returns a copy of the elements.
func (a *DataArray) Values() []property.Value {
	cp := make([]property.Value, len(a.data))
	copy(cp, a.data)
	return cp
}

// float returns element i of a float array.
func (a *DataArray) float(i int) float32 {
	return float32(a.data[i].(property.Float))
}

// Last returns the final element.
func (a *DataArray) Last() property.Value { return a.data[len(a.data)-1] }

// Retain records one more user of the array.
func (a *DataArray) Retain() { a.refs++ }

// Release drops one user of the array.
func (a *DataArray) Release() {
	if a.refs > 0 {
		a.refs--
	}
}

// RefCount returns the number of live users.
func (a *DataArray) RefCount() int { return a.refs }
