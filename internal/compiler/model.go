package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/logicgraph/internal/property"
)

// Graph is a compiled graph declaration.
type Graph struct {
	Arrays []ArrayDecl
	Nodes  []NodeDecl
	Links  []LinkDecl
	Inputs []InputDecl
}

// ArrayDecl declares a data array.
type ArrayDecl struct {
	Name   string
	Type   property.Type
	Values []Literal
}

// Node kinds as written in declarations.
const (
	KindScript    = "script"
	KindAnimation = "animation"
	KindTimer     = "timer"
	KindBinding   = "binding"
)

// NodeDecl declares one logic node.
type NodeDecl struct {
	Name     string
	Kind     string
	Script   string
	Sink     string
	Inputs   *property.Decl
	Outputs  *property.Decl
	Channels []ChannelDecl
}

// ChannelDecl declares one animation channel by array names.
type ChannelDecl struct {
	Name          string
	Timestamps    string
	Keyframes     string
	Interpolation string
	TangentsIn    string
	TangentsOut   string
}

// Endpoint is a "node.path" reference.
type Endpoint struct {
	Node string
	Path string
}

func (e Endpoint) String() string { return e.Node + "." + e.Path }

// ParseEndpoint splits "node.path.to.prop" at the first dot.
func ParseEndpoint(s string) (Endpoint, error) {
	node, path, ok := strings.Cut(s, ".")
	if !ok || node == "" || path == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q must have the form node.path", s)
	}
	return Endpoint{Node: node, Path: path}, nil
}

// LinkDecl connects an output to an input.
type LinkDecl struct {
	From Endpoint
	To   Endpoint
}

// InputDecl sets the initial value of an unlinked input.
type InputDecl struct {
	Node     string
	Property string
	Value    Literal
}

// Literal is an untyped declaration value. It becomes a property value
// once the target type is known.
type Literal struct {
	// Numbers holds one component for scalars, N for vectors.
	Numbers []float64
	// Exact mirrors Numbers when every component is an integer literal.
	Exact []int64
	Bool  *bool
	Text  *string
}

func (l Literal) String() string {
	switch {
	case l.Bool != nil:
		return fmt.Sprint(*l.Bool)
	case l.Text != nil:
		return fmt.Sprintf("%q", *l.Text)
	case len(l.Numbers) == 1:
		return fmt.Sprint(l.Numbers[0])
	default:
		return fmt.Sprint(l.Numbers)
	}
}

// As converts l to a value of type t. Integer types require integer
// literals.
func (l Literal) As(t property.Type) (property.Value, error) {
	switch t {
	case property.TypeBool:
		if l.Bool == nil {
			return nil, fmt.Errorf("%s is not a bool", l)
		}
		return property.Bool(*l.Bool), nil
	case property.TypeString:
		if l.Text == nil {
			return nil, fmt.Errorf("%s is not a string", l)
		}
		return property.String(*l.Text), nil
	case property.TypeInt64:
		if len(l.Exact) != 1 {
			return nil, fmt.Errorf("%s is not an integer", l)
		}
		return property.Int64(l.Exact[0]), nil
	case property.TypeInt32, property.TypeVec2i, property.TypeVec3i, property.TypeVec4i:
		if l.Numbers == nil || len(l.Exact) != len(l.Numbers) {
			return nil, fmt.Errorf("%s is not an integer value of type %s", l, t)
		}
		for _, n := range l.Exact {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf("%d overflows int32", n)
			}
		}
	}
	if l.Numbers == nil {
		return nil, fmt.Errorf("%s is not a value of type %s", l, t)
	}
	return property.FromComponents(t, l.Numbers)
}

// Number returns a scalar literal.
func Number(f float64) Literal {
	l := Literal{Numbers: []float64{f}}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		l.Exact = []int64{int64(f)}
	}
	return l
}
