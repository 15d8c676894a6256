package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/graph"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/timer"
)

// Validation error codes (E200-E299)
const (
	// Node errors (E200-E209)
	ErrUnknownKind     = "E200" // kind is not script/animation/timer/binding
	ErrMissingRef      = "E201" // script or binding without a registry name
	ErrUnexpectedField = "E202" // field not valid for the node kind
	ErrInvalidName     = "E203" // node name contains a dot
	ErrInvalidDecl     = "E204" // property decl fails structural checks

	// Animation errors (E210-E219)
	ErrUnknownArray         = "E210" // channel names an undeclared array
	ErrInvalidInterpolation = "E211" // unknown interpolation name
	ErrInvalidArray         = "E212" // array data does not match its type

	// Link and input errors (E220-E229)
	ErrUnknownNode         = "E220" // link or input names an undeclared node
	ErrUnknownProperty     = "E221" // path does not resolve to a primitive
	ErrLinkTypeMismatch    = "E222" // source and target types differ
	ErrDuplicateLinkTarget = "E223" // input linked twice
	ErrStaticCycle         = "E224" // links form a cycle
	ErrInvalidValue        = "E225" // initial value does not fit the type
	ErrInputLinked         = "E226" // initial value for a linked input
	ErrSelfLink            = "E227" // link within one node
)

// ValidationError represents a graph declaration error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks cross references, link types and static cycles.
// Returns all errors found (does not fail-fast).
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	arrays := make(map[string]ArrayDecl, len(g.Arrays))
	for _, a := range g.Arrays {
		arrays[a.Name] = a
		if !animation.CanStore(a.Type) {
			add(ErrInvalidArray, "arrays."+a.Name, "type %s cannot be stored in a data array", a.Type)
			continue
		}
		if len(a.Values) == 0 {
			add(ErrInvalidArray, "arrays."+a.Name, "data must not be empty")
		}
		for i, lit := range a.Values {
			if _, err := lit.As(a.Type); err != nil {
				add(ErrInvalidArray, fmt.Sprintf("arrays.%s.data[%d]", a.Name, i), "%v", err)
			}
		}
	}

	decls := make(map[string]nodeShape, len(g.Nodes))
	for _, n := range g.Nodes {
		field := "nodes." + n.Name
		if strings.Contains(n.Name, ".") {
			add(ErrInvalidName, field, "node name must not contain '.'")
		}
		shape, nodeErrs := validateNode(n, arrays)
		errs = append(errs, nodeErrs...)
		decls[n.Name] = shape
	}

	linked := make(map[string]bool)
	deps := graph.New()
	ids := make(map[string]graph.NodeID, len(g.Nodes))
	names := make(map[graph.NodeID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		id := graph.NodeID(i + 1)
		ids[n.Name], names[id] = id, n.Name
		deps.AddNode(id)
	}

	for i, l := range g.Links {
		field := fmt.Sprintf("links[%d]", i)
		src, srcOK := decls[l.From.Node]
		tgt, tgtOK := decls[l.To.Node]
		if !srcOK {
			add(ErrUnknownNode, field+".from", "unknown node %q", l.From.Node)
		}
		if !tgtOK {
			add(ErrUnknownNode, field+".to", "unknown node %q", l.To.Node)
		}
		if !srcOK || !tgtOK {
			continue
		}
		if l.From.Node == l.To.Node {
			add(ErrSelfLink, field, "cannot link node %q to itself", l.From.Node)
			continue
		}
		from, ok := lookupPrimitive(src.outputs, l.From.Path)
		if !ok {
			add(ErrUnknownProperty, field+".from", "node %q has no output %q", l.From.Node, l.From.Path)
		}
		to, ok2 := lookupPrimitive(tgt.inputs, l.To.Path)
		if !ok2 {
			add(ErrUnknownProperty, field+".to", "node %q has no input %q", l.To.Node, l.To.Path)
		}
		if !ok || !ok2 {
			continue
		}
		if from.Type != to.Type {
			add(ErrLinkTypeMismatch, field, "%s (%s) -> %s (%s)", l.From, from.Type, l.To, to.Type)
			continue
		}
		key := l.To.String()
		if linked[key] {
			add(ErrDuplicateLinkTarget, field+".to", "input %s is already linked", key)
			continue
		}
		linked[key] = true
		deps.AddEdge(ids[l.From.Node], ids[l.To.Node])
	}

	for _, cycle := range deps.Cycles() {
		path := make([]string, len(cycle))
		for i, id := range cycle {
			path[i] = names[id]
		}
		add(ErrStaticCycle, "links", "cycle: %s", strings.Join(path, " -> "))
	}

	for i, in := range g.Inputs {
		field := fmt.Sprintf("inputs[%d]", i)
		shape, ok := decls[in.Node]
		if !ok {
			add(ErrUnknownNode, field+".node", "unknown node %q", in.Node)
			continue
		}
		d, ok := lookupPrimitive(shape.inputs, in.Property)
		if !ok {
			add(ErrUnknownProperty, field+".property", "node %q has no input %q", in.Node, in.Property)
			continue
		}
		if linked[in.Node+"."+in.Property] {
			add(ErrInputLinked, field, "input %s.%s is linked", in.Node, in.Property)
			continue
		}
		if _, err := in.Value.As(d.Type); err != nil {
			add(ErrInvalidValue, field+".value", "%v", err)
		}
	}

	return errs
}

// nodeShape is the declared input and output trees of one node.
type nodeShape struct {
	inputs  property.Decl
	outputs property.Decl
}

func validateNode(n NodeDecl, arrays map[string]ArrayDecl) (nodeShape, []ValidationError) {
	var errs []ValidationError
	field := "nodes." + n.Name
	add := func(code, f, format string, args ...any) {
		errs = append(errs, ValidationError{Field: f, Message: fmt.Sprintf(format, args...), Code: code})
	}
	unexpected := func(label string, present bool) {
		if present {
			add(ErrUnexpectedField, field+"."+label, "not valid for %s nodes", n.Kind)
		}
	}

	shape := nodeShape{inputs: property.Struct("IN"), outputs: property.Struct("OUT")}
	switch n.Kind {
	case KindScript:
		if n.Script == "" {
			add(ErrMissingRef, field+".script", "script nodes need a script name")
		}
		unexpected("sink", n.Sink != "")
		unexpected("channels", len(n.Channels) > 0)
		if n.Inputs != nil {
			shape.inputs = *n.Inputs
		}
		if n.Outputs != nil {
			shape.outputs = *n.Outputs
		}
	case KindBinding:
		if n.Sink == "" {
			add(ErrMissingRef, field+".sink", "binding nodes need a sink name")
		}
		unexpected("script", n.Script != "")
		unexpected("outputs", n.Outputs != nil)
		unexpected("channels", len(n.Channels) > 0)
		if n.Inputs != nil {
			shape.inputs = *n.Inputs
		}
	case KindTimer:
		unexpected("script", n.Script != "")
		unexpected("sink", n.Sink != "")
		unexpected("inputs", n.Inputs != nil)
		unexpected("outputs", n.Outputs != nil)
		unexpected("channels", len(n.Channels) > 0)
		shape.inputs, shape.outputs = timer.InputDecl(), timer.OutputDecl()
	case KindAnimation:
		unexpected("script", n.Script != "")
		unexpected("sink", n.Sink != "")
		unexpected("inputs", n.Inputs != nil)
		unexpected("outputs", n.Outputs != nil)
		shape.inputs = animation.InputDecl()
		children := []property.Decl{property.Prim(animation.OutputProgress, property.TypeFloat)}
		if len(n.Channels) == 0 {
			add(ErrUnexpectedField, field+".channels", "animation nodes need at least one channel")
		}
		for i, ch := range n.Channels {
			cf := fmt.Sprintf("%s.channels[%d]", field, i)
			if _, err := animation.ParseInterpolation(ch.Interpolation); err != nil {
				add(ErrInvalidInterpolation, cf+".interpolation", "%v", err)
			}
			for _, ref := range []struct{ label, name string }{
				{"timestamps", ch.Timestamps},
				{"keyframes", ch.Keyframes},
				{"tangents_in", ch.TangentsIn},
				{"tangents_out", ch.TangentsOut},
			} {
				if ref.name == "" {
					continue
				}
				if _, ok := arrays[ref.name]; !ok {
					add(ErrUnknownArray, cf+"."+ref.label, "unknown array %q", ref.name)
				}
			}
			if kf, ok := arrays[ch.Keyframes]; ok {
				children = append(children, property.Prim(ch.Name, kf.Type))
			}
		}
		shape.outputs = property.Struct("OUT", children...)
	default:
		add(ErrUnknownKind, field+".kind", "unknown node kind %q", n.Kind)
		return shape, errs
	}

	for _, d := range []struct {
		label string
		decl  property.Decl
	}{{"inputs", shape.inputs}, {"outputs", shape.outputs}} {
		if err := d.decl.Validate(); err != nil {
			add(ErrInvalidDecl, field+"."+d.label, "%v", err)
		}
	}
	return shape, errs
}

// lookupPrimitive resolves a dotted path inside a decl tree.
func lookupPrimitive(root property.Decl, dotted string) (property.Decl, bool) {
	cur := root
	for _, seg := range strings.Split(dotted, ".") {
		next, ok := childDecl(cur, seg)
		if !ok {
			return property.Decl{}, false
		}
		cur = next
	}
	return cur, cur.Type.IsPrimitive()
}

func childDecl(d property.Decl, seg string) (property.Decl, bool) {
	if d.Type == property.TypeArray {
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(d.Children) {
			return property.Decl{}, false
		}
		return d.Children[i], true
	}
	for _, c := range d.Children {
		if c.Name == seg {
			return c, true
		}
	}
	return property.Decl{}, false
}
