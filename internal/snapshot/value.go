package snapshot

import (
	"fmt"
	"math"

	"github.com/roach88/logicgraph/internal/property"
)

// Value is a persisted primitive value. Numeric components, booleans (0
// or 1) and float bit patterns live in Data; strings live in Text.
type Value struct {
	Type string  `json:"type"`
	Data []int64 `json:"data,omitempty"`
	Text string  `json:"text,omitempty"`
}

// FromValue converts a property value for persistence.
func FromValue(v property.Value) Value {
	out := Value{Type: v.Type().String()}
	switch val := v.(type) {
	case property.String:
		out.Text = string(val)
	case property.Bool:
		if val {
			out.Data = []int64{1}
		} else {
			out.Data = []int64{0}
		}
	case property.Int64:
		out.Data = []int64{int64(val)}
	default:
		comps := property.Components(v)
		out.Data = make([]int64, len(comps))
		for i, c := range comps {
			if v.Type().IsFloatBased() {
				out.Data[i] = int64(math.Float32bits(float32(c)))
			} else {
				out.Data[i] = int64(c)
			}
		}
	}
	return out
}

// ToValue converts a persisted value back. It fails on unknown types and
// on component counts or ranges that the type cannot hold.
func (v Value) ToValue() (property.Value, error) {
	t, err := property.ParseType(v.Type)
	if err != nil {
		return nil, err
	}
	switch t {
	case property.TypeString:
		if len(v.Data) != 0 {
			return nil, fmt.Errorf("string value carries numeric data")
		}
		return property.String(v.Text), nil
	case property.TypeBool:
		if len(v.Data) != 1 || (v.Data[0] != 0 && v.Data[0] != 1) {
			return nil, fmt.Errorf("bool value must be 0 or 1, got %v", v.Data)
		}
		return property.Bool(v.Data[0] == 1), nil
	case property.TypeInt64:
		if len(v.Data) != 1 {
			return nil, fmt.Errorf("int64 value needs 1 component, got %d", len(v.Data))
		}
		return property.Int64(v.Data[0]), nil
	}
	if !t.IsPrimitive() {
		return nil, fmt.Errorf("%s is not a primitive type", t)
	}
	if len(v.Data) != t.ComponentCount() {
		return nil, fmt.Errorf("%s value needs %d components, got %d", t, t.ComponentCount(), len(v.Data))
	}
	comps := make([]float64, len(v.Data))
	for i, d := range v.Data {
		if t.IsFloatBased() {
			if d < 0 || d > math.MaxUint32 {
				return nil, fmt.Errorf("float bits %d out of range", d)
			}
			comps[i] = float64(math.Float32frombits(uint32(d)))
			continue
		}
		if d < math.MinInt32 || d > math.MaxInt32 {
			return nil, fmt.Errorf("component %d out of int32 range", d)
		}
		comps[i] = float64(d)
	}
	return property.FromComponents(t, comps)
}

// FromProperty records a whole property tree.
func FromProperty(p *property.Property) Property {
	out := Property{Name: p.Name(), Type: p.Type().String()}
	if p.IsPrimitive() {
		v := FromValue(p.Value())
		out.Value = &v
		return out
	}
	for _, c := range p.Children() {
		out.Children = append(out.Children, FromProperty(c))
	}
	return out
}

// Decl reconstructs the declaration of a recorded tree.
func (p Property) Decl() (property.Decl, error) {
	t, err := property.ParseType(p.Type)
	if err != nil {
		return property.Decl{}, fmt.Errorf("property %q: %w", p.Name, err)
	}
	d := property.Decl{Name: p.Name, Type: t}
	for _, c := range p.Children {
		cd, err := c.Decl()
		if err != nil {
			return property.Decl{}, err
		}
		d.Children = append(d.Children, cd)
	}
	return d, nil
}

// Apply writes recorded values into a live tree built from the same
// declaration. Names, types and shapes must match exactly.
func (p Property) Apply(dst *property.Property) error {
	if p.Name != dst.Name() || p.Type != dst.Type().String() {
		return fmt.Errorf("property %s:%s does not match %s", p.Name, p.Type, dst)
	}
	if dst.IsPrimitive() {
		if p.Value == nil {
			return fmt.Errorf("property %q has no value", p.Name)
		}
		v, err := p.Value.ToValue()
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
		_, err = dst.Write(v)
		return err
	}
	if len(p.Children) != dst.ChildCount() {
		return fmt.Errorf("property %q has %d children, expected %d", p.Name, len(p.Children), dst.ChildCount())
	}
	for i, c := range p.Children {
		child, _ := dst.Child(i)
		if err := c.Apply(child); err != nil {
			return err
		}
	}
	return nil
}
