package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/logicgraph/internal/property"
)

var (
	graphFields   = []string{"arrays", "nodes", "links", "inputs"}
	arrayFields   = []string{"type", "data"}
	nodeFields    = []string{"kind", "script", "sink", "inputs", "outputs", "channels"}
	channelFields = []string{"name", "timestamps", "keyframes", "interpolation", "tangents_in", "tangents_out"}
	linkFields    = []string{"from", "to"}
	inputFields   = []string{"node", "property", "value"}
)

// CompileValue parses a CUE value into a Graph. It checks the declaration
// shape only; cross references are checked by Validate.
func CompileValue(v cue.Value) (*Graph, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "graph", graphFields); err != nil {
		return nil, err
	}

	g := &Graph{}
	var err error
	if g.Arrays, err = compileArrays(v.LookupPath(cue.ParsePath("arrays"))); err != nil {
		return nil, err
	}
	if g.Nodes, err = compileNodes(v.LookupPath(cue.ParsePath("nodes"))); err != nil {
		return nil, err
	}
	if g.Links, err = compileLinks(v.LookupPath(cue.ParsePath("links"))); err != nil {
		return nil, err
	}
	if g.Inputs, err = compileInputs(v.LookupPath(cue.ParsePath("inputs"))); err != nil {
		return nil, err
	}
	return g, nil
}

func compileArrays(v cue.Value) ([]ArrayDecl, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ArrayDecl
	for iter.Next() {
		name, av := iter.Label(), iter.Value()
		field := "arrays." + name
		if err := checkFields(av, field, arrayFields); err != nil {
			return nil, err
		}
		typeName, err := stringField(av, field, "type", true)
		if err != nil {
			return nil, err
		}
		t, err := property.ParseType(typeName)
		if err != nil || !t.IsPrimitive() {
			return nil, &CompileError{Field: field + ".type", Message: fmt.Sprintf("unknown primitive type %q", typeName), Pos: av.Pos()}
		}
		decl := ArrayDecl{Name: name, Type: t}
		data := av.LookupPath(cue.ParsePath("data"))
		if !data.Exists() {
			return nil, &CompileError{Field: field + ".data", Message: "data is required", Pos: av.Pos()}
		}
		list, err := data.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for list.Next() {
			lit, err := compileLiteral(list.Value(), field+".data")
			if err != nil {
				return nil, err
			}
			decl.Values = append(decl.Values, lit)
		}
		out = append(out, decl)
	}
	return out, nil
}

func compileNodes(v cue.Value) ([]NodeDecl, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []NodeDecl
	for iter.Next() {
		n, err := compileNode(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func compileNode(name string, v cue.Value) (NodeDecl, error) {
	field := "nodes." + name
	if err := checkFields(v, field, nodeFields); err != nil {
		return NodeDecl{}, err
	}
	n := NodeDecl{Name: name}
	var err error
	if n.Kind, err = stringField(v, field, "kind", true); err != nil {
		return NodeDecl{}, err
	}
	if n.Script, err = stringField(v, field, "script", false); err != nil {
		return NodeDecl{}, err
	}
	if n.Sink, err = stringField(v, field, "sink", false); err != nil {
		return NodeDecl{}, err
	}
	for _, side := range []struct {
		label string
		root  string
		dst   **property.Decl
	}{
		{"inputs", "IN", &n.Inputs},
		{"outputs", "OUT", &n.Outputs},
	} {
		dv := v.LookupPath(cue.ParsePath(side.label))
		if !dv.Exists() {
			continue
		}
		if dv.IncompleteKind() != cue.StructKind {
			return NodeDecl{}, &CompileError{Field: field + "." + side.label, Message: "must be a struct of property decls", Pos: dv.Pos()}
		}
		d, err := compileDecl(side.root, dv, field+"."+side.label)
		if err != nil {
			return NodeDecl{}, err
		}
		*side.dst = &d
	}

	cv := v.LookupPath(cue.ParsePath("channels"))
	if cv.Exists() {
		list, err := cv.List()
		if err != nil {
			return NodeDecl{}, formatCUEError(err)
		}
		for list.Next() {
			ch, err := compileChannel(list.Value(), field+".channels")
			if err != nil {
				return NodeDecl{}, err
			}
			n.Channels = append(n.Channels, ch)
		}
	}
	return n, nil
}

func compileChannel(v cue.Value, field string) (ChannelDecl, error) {
	if err := checkFields(v, field, channelFields); err != nil {
		return ChannelDecl{}, err
	}
	var ch ChannelDecl
	for _, f := range []struct {
		label    string
		dst      *string
		required bool
	}{
		{"name", &ch.Name, true},
		{"timestamps", &ch.Timestamps, true},
		{"keyframes", &ch.Keyframes, true},
		{"interpolation", &ch.Interpolation, false},
		{"tangents_in", &ch.TangentsIn, false},
		{"tangents_out", &ch.TangentsOut, false},
	} {
		s, err := stringField(v, field, f.label, f.required)
		if err != nil {
			return ChannelDecl{}, err
		}
		*f.dst = s
	}
	if ch.Interpolation == "" {
		ch.Interpolation = "linear"
	}
	return ch, nil
}

// compileDecl parses a property decl: a type name, {array: decl, size: n}
// or a struct of decls.
func compileDecl(name string, v cue.Value, field string) (property.Decl, error) {
	if v.IncompleteKind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return property.Decl{}, formatCUEError(err)
		}
		t, err := property.ParseType(s)
		if err != nil || !t.IsPrimitive() {
			return property.Decl{}, &CompileError{Field: field, Message: fmt.Sprintf("unknown primitive type %q", s), Pos: v.Pos()}
		}
		return property.Prim(name, t), nil
	}
	if v.IncompleteKind() != cue.StructKind {
		return property.Decl{}, &CompileError{Field: field, Message: "property decl must be a type name or a struct", Pos: v.Pos()}
	}

	if elem := v.LookupPath(cue.ParsePath("array")); elem.Exists() {
		if err := checkFields(v, field, []string{"array", "size"}); err != nil {
			return property.Decl{}, err
		}
		size, err := v.LookupPath(cue.ParsePath("size")).Int64()
		if err != nil {
			return property.Decl{}, &CompileError{Field: field + ".size", Message: "array size must be an integer", Pos: v.Pos()}
		}
		ed, err := compileDecl("", elem, field+".array")
		if err != nil {
			return property.Decl{}, err
		}
		return property.Array(name, int(size), ed), nil
	}

	iter, err := v.Fields()
	if err != nil {
		return property.Decl{}, formatCUEError(err)
	}
	var children []property.Decl
	for iter.Next() {
		cd, err := compileDecl(iter.Label(), iter.Value(), field+"."+iter.Label())
		if err != nil {
			return property.Decl{}, err
		}
		children = append(children, cd)
	}
	return property.Struct(name, children...), nil
}

func compileLinks(v cue.Value) ([]LinkDecl, error) {
	if !v.Exists() {
		return nil, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []LinkDecl
	for i := 0; list.Next(); i++ {
		lv := list.Value()
		field := fmt.Sprintf("links[%d]", i)
		if err := checkFields(lv, field, linkFields); err != nil {
			return nil, err
		}
		var l LinkDecl
		for _, f := range []struct {
			label string
			dst   *Endpoint
		}{{"from", &l.From}, {"to", &l.To}} {
			s, err := stringField(lv, field, f.label, true)
			if err != nil {
				return nil, err
			}
			ep, err := ParseEndpoint(s)
			if err != nil {
				return nil, &CompileError{Field: field + "." + f.label, Message: err.Error(), Pos: lv.Pos()}
			}
			*f.dst = ep
		}
		out = append(out, l)
	}
	return out, nil
}

func compileInputs(v cue.Value) ([]InputDecl, error) {
	if !v.Exists() {
		return nil, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []InputDecl
	for i := 0; list.Next(); i++ {
		iv := list.Value()
		field := fmt.Sprintf("inputs[%d]", i)
		if err := checkFields(iv, field, inputFields); err != nil {
			return nil, err
		}
		var in InputDecl
		if in.Node, err = stringField(iv, field, "node", true); err != nil {
			return nil, err
		}
		if in.Property, err = stringField(iv, field, "property", true); err != nil {
			return nil, err
		}
		val := iv.LookupPath(cue.ParsePath("value"))
		if !val.Exists() {
			return nil, &CompileError{Field: field + ".value", Message: "value is required", Pos: iv.Pos()}
		}
		if in.Value, err = compileLiteral(val, field+".value"); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// compileLiteral reads a bool, string, number or list of numbers.
func compileLiteral(v cue.Value, field string) (Literal, error) {
	switch v.IncompleteKind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return Literal{}, formatCUEError(err)
		}
		return Literal{Bool: &b}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return Literal{}, formatCUEError(err)
		}
		return Literal{Text: &s}, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return Literal{}, formatCUEError(err)
		}
		return Literal{Numbers: []float64{float64(n)}, Exact: []int64{n}}, nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return Literal{}, formatCUEError(err)
		}
		return Literal{Numbers: []float64{f}}, nil
	case cue.ListKind:
		list, err := v.List()
		if err != nil {
			return Literal{}, formatCUEError(err)
		}
		var lit Literal
		exact := true
		for list.Next() {
			c, err := compileLiteral(list.Value(), field)
			if err != nil {
				return Literal{}, err
			}
			if len(c.Numbers) != 1 {
				return Literal{}, &CompileError{Field: field, Message: "vector components must be numbers", Pos: v.Pos()}
			}
			lit.Numbers = append(lit.Numbers, c.Numbers[0])
			if len(c.Exact) == 1 {
				lit.Exact = append(lit.Exact, c.Exact[0])
			} else {
				exact = false
			}
		}
		if !exact {
			lit.Exact = nil
		}
		return lit, nil
	}
	return Literal{}, &CompileError{Field: field, Message: "value must be a bool, string, number or list of numbers", Pos: v.Pos()}
}

func stringField(v cue.Value, field, label string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(label))
	if !fv.Exists() {
		if required {
			return "", &CompileError{Field: field + "." + label, Message: label + " is required", Pos: v.Pos()}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field + "." + label, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

// checkFields rejects labels outside allowed.
func checkFields(v cue.Value, field string, allowed []string) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{Field: field, Message: "must be a struct", Pos: v.Pos()}
	}
	for iter.Next() {
		if !slices.Contains(allowed, iter.Label()) {
			return &CompileError{
				Field:   field + "." + iter.Label(),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}
