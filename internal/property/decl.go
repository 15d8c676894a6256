package property

import "fmt"

// Decl declares the shape of a property tree. It carries no values; Build
// turns it into a live tree with default values.
type Decl struct {
	Name     string
	Type     Type
	Children []Decl
}

// Prim declares a primitive property.
func Prim(name string, t Type) Decl {
	return Decl{Name: name, Type: t}
}

// Struct declares a struct property with named children.
func Struct(name string, children ...Decl) Decl {
	return Decl{Name: name, Type: TypeStruct, Children: children}
}

// Array declares an array of size copies of elem. Array elements are
// unnamed.
func Array(name string, size int, elem Decl) Decl {
	children := make([]Decl, size)
	for i := range children {
		children[i] = elem
		children[i].Name = ""
	}
	return Decl{Name: name, Type: TypeArray, Children: children}
}

// Validate checks structural rules: primitives have no children, struct
// children have unique non-empty names, arrays are non-empty and
// homogeneous.
func (d Decl) Validate() error {
	switch {
	case d.Type.IsPrimitive():
		if len(d.Children) != 0 {
			return fmt.Errorf("primitive property %q cannot have children", d.Name)
		}
		return nil
	case d.Type == TypeStruct:
		seen := make(map[string]bool, len(d.Children))
		for _, c := range d.Children {
			if c.Name == "" {
				return fmt.Errorf("struct %q has a child without a name", d.Name)
			}
			if seen[c.Name] {
				return fmt.Errorf("struct %q has duplicate child %q", d.Name, c.Name)
			}
			seen[c.Name] = true
			if err := c.Validate(); err != nil {
				return err
			}
		}
		return nil
	case d.Type == TypeArray:
		if len(d.Children) == 0 {
			return fmt.Errorf("array %q must have at least one element", d.Name)
		}
		for i, c := range d.Children {
			if !c.sameShape(d.Children[0]) {
				return fmt.Errorf("array %q element %d differs from element 0", d.Name, i)
			}
			if err := c.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("property %q has invalid type %s", d.Name, d.Type)
	}
}

func (d Decl) sameShape(o Decl) bool {
	if d.Type != o.Type || len(d.Children) != len(o.Children) {
		return false
	}
	for i := range d.Children {
		if d.Children[i].Name != o.Children[i].Name || !d.Children[i].sameShape(o.Children[i]) {
			return false
		}
	}
	return true
}
