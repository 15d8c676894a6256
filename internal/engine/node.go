package engine

import (
	"fmt"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/snapshot"
	"github.com/roach88/logicgraph/internal/timer"
)

// NodeID is the stable handle of a logic node.
type NodeID = property.NodeID

// Kind is the closed set of node variants.
type Kind int

const (
	KindScript Kind = iota
	KindAnimation
	KindTimer
	KindBinding
)

var kindNames = [...]string{
	KindScript:    snapshot.KindScript,
	KindAnimation: snapshot.KindAnimation,
	KindTimer:     snapshot.KindTimer,
	KindBinding:   snapshot.KindBinding,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func parseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// Script is an opaque compute unit. Evaluate reads in and writes its
// results into out with Property.Write. It must be idempotent for equal
// inputs and must not call back into the engine.
type Script interface {
	Evaluate(in, out *property.Property) error
}

// ScriptFunc adapts a function to Script.
type ScriptFunc func(in, out *property.Property) error

// Evaluate calls f(in, out).
func (f ScriptFunc) Evaluate(in, out *property.Property) error { return f(in, out) }

// Change is one input value pushed to a sink.
type Change struct {
	// Path is the dotted path of the input below the node's input root.
	Path  string
	Value property.Value
}

// Sink receives the changed inputs of a binding node and applies them to
// an object outside the graph. Returning an error fails the update.
type Sink interface {
	Apply(changes []Change) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(changes []Change) error

// Apply calls f(changes).
func (f SinkFunc) Apply(changes []Change) error { return f(changes) }

// LogicNode is one node of the graph. Exactly one of the kind payloads is
// set, selected by kind.
type LogicNode struct {
	id      NodeID
	name    string
	kind    Kind
	inputs  *property.Property
	outputs *property.Property // nil for bindings
	dirty   bool

	// ref names the script or sink implementation for persistence.
	ref    string
	script Script
	anim   *animation.Node
	timer  *timer.Node
	sink   Sink
}

func (n *LogicNode) ID() NodeID                  { return n.id }
func (n *LogicNode) Name() string                { return n.name }
func (n *LogicNode) Kind() Kind                  { return n.kind }
func (n *LogicNode) Ref() string                 { return n.ref }
func (n *LogicNode) Inputs() *property.Property  { return n.inputs }
func (n *LogicNode) Outputs() *property.Property { return n.outputs }
func (n *LogicNode) IsDirty() bool               { return n.dirty }
func (n *LogicNode) Animation() *animation.Node  { return n.anim }

// SetName renames the node. Names need not be unique.
func (n *LogicNode) SetName(name string) { n.name = name }

func (n *LogicNode) String() string {
	return fmt.Sprintf("%s '%s' (id=%d)", n.kind, n.name, n.id)
}

// evaluate dispatches on the node kind.
func (n *LogicNode) evaluate() error {
	switch n.kind {
	case KindScript:
		if err := n.script.Evaluate(n.inputs, n.outputs); err != nil {
			return err
		}
		n.inputs.ResetChanged()
		return nil
	case KindAnimation:
		if err := n.anim.Evaluate(n.name, n.inputs, n.outputs); err != nil {
			return err
		}
		n.inputs.ResetChanged()
		return nil
	case KindTimer:
		if err := n.timer.Evaluate(n.name, n.inputs, n.outputs); err != nil {
			return err
		}
		n.inputs.ResetChanged()
		return nil
	case KindBinding:
		return n.push()
	default:
		panic(fmt.Sprintf("engine: node %d has invalid kind %d", n.id, n.kind))
	}
}

// push hands every changed input to the sink. Flags are cleared only
// after the sink accepted the values, so a rejected push is retried with
// the same changes.
func (n *LogicNode) push() error {
	if n.sink == nil {
		n.inputs.ResetChanged()
		return nil
	}
	var changes []Change
	for _, p := range n.inputs.Primitives() {
		if p.Changed() {
			changes = append(changes, Change{Path: p.DisplayPath(), Value: p.Value()})
		}
	}
	if len(changes) == 0 {
		return nil
	}
	if err := n.sink.Apply(changes); err != nil {
		return fmt.Errorf("binding '%s' failed to apply values: %w", n.name, err)
	}
	n.inputs.ResetChanged()
	return nil
}
