package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/graph"
	"github.com/roach88/logicgraph/internal/links"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/timer"
)

// graphState is everything a load replaces: the node arena, data arrays,
// the link table and the dependency graph derived from it.
//
// INVARIANTS:
//   - every node in order is in nodes under its id, and vice versa
//   - deps has an edge a->b with multiplicity k iff the link table holds
//     k links from a's outputs to b's inputs
//   - every array referenced by a live animation node is in arrays
type graphState struct {
	nodes  map[NodeID]*LogicNode
	order  []*LogicNode // creation order
	arrays []*animation.DataArray
	links  *links.Table
	deps   *graph.Graph
	ids    *Sequence
}

func newGraphState(lastID uint64) *graphState {
	return &graphState{
		nodes: make(map[NodeID]*LogicNode),
		links: links.New(),
		deps:  graph.New(),
		ids:   NewSequenceAt(lastID),
	}
}

func (s *graphState) nextID() NodeID { return NodeID(s.ids.Next()) }

// register adds a fully built node.
func (s *graphState) register(n *LogicNode) {
	s.nodes[n.id] = n
	s.order = append(s.order, n)
	s.deps.AddNode(n.id)
	if n.anim != nil {
		n.anim.Retain()
	}
}

// remove drops a node and every link touching it, and returns the removed
// links.
func (s *graphState) remove(n *LogicNode) []links.Link {
	removed := s.links.UnlinkAll(n.inputs, n.outputs)
	for _, l := range removed {
		s.deps.RemoveEdge(l.Source.Owner(), l.Target.Owner())
	}
	s.deps.RemoveNode(n.id)
	delete(s.nodes, n.id)
	if i := slices.Index(s.order, n); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	if n.anim != nil {
		n.anim.Release()
	}
	return removed
}

func (s *graphState) link(src, tgt *property.Property) error {
	if err := s.links.Link(src, tgt); err != nil {
		return err
	}
	s.deps.AddEdge(src.Owner(), tgt.Owner())
	return nil
}

func (s *graphState) unlink(tgt *property.Property) error {
	src, err := s.links.Unlink(tgt)
	if err != nil {
		return err
	}
	s.deps.RemoveEdge(src.Owner(), tgt.Owner())
	return nil
}

// owner resolves the live node a property belongs to. It fails for
// properties of destroyed nodes and of other engines.
func (s *graphState) owner(p *property.Property) (*LogicNode, error) {
	if p == nil {
		return nil, errors.New("property is nil")
	}
	n, ok := s.nodes[p.Owner()]
	if !ok {
		return nil, fmt.Errorf("property '%s' does not belong to a live node", p.Name())
	}
	root := p
	for root.Parent() != nil {
		root = root.Parent()
	}
	if root != n.inputs && root != n.outputs {
		return nil, fmt.Errorf("property '%s' does not belong to this engine", p.Name())
	}
	return n, nil
}

func (s *graphState) ownsArray(a *animation.DataArray) bool {
	return slices.Contains(s.arrays, a)
}

func (s *graphState) ownsNode(n *LogicNode) bool {
	return n != nil && s.nodes[n.id] == n
}

// usersOf returns the animation nodes whose channels reference a.
func (s *graphState) usersOf(a *animation.DataArray) []*LogicNode {
	var users []*LogicNode
	for _, n := range s.order {
		if n.anim == nil {
			continue
		}
		for _, ch := range n.anim.Channels() {
			if slices.Contains(ch.Arrays(), a) {
				users = append(users, n)
				break
			}
		}
	}
	return users
}

func buildRoots(id NodeID, in, out *property.Decl, inSem, outSem property.Semantics) (inputs, outputs *property.Property, err error) {
	if in.Type != property.TypeStruct {
		return nil, nil, fmt.Errorf("inputs must be a struct, got %s", in.Type)
	}
	if inputs, err = property.Build(*in, inSem, id); err != nil {
		return nil, nil, fmt.Errorf("inputs: %w", err)
	}
	if out == nil {
		return inputs, nil, nil
	}
	if out.Type != property.TypeStruct {
		return nil, nil, fmt.Errorf("outputs must be a struct, got %s", out.Type)
	}
	if outputs, err = property.Build(*out, outSem, id); err != nil {
		return nil, nil, fmt.Errorf("outputs: %w", err)
	}
	return inputs, outputs, nil
}

func newScriptNode(id NodeID, name, ref string, script Script, in, out property.Decl) (*LogicNode, error) {
	if script == nil {
		return nil, fmt.Errorf("failed to create script '%s': script is nil", name)
	}
	inputs, outputs, err := buildRoots(id, &in, &out, property.ScriptInput, property.ScriptOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create script '%s': %w", name, err)
	}
	return &LogicNode{
		id: id, name: name, kind: KindScript, inputs: inputs, outputs: outputs,
		dirty: true, ref: ref, script: script,
	}, nil
}

func newAnimationNode(id NodeID, name string, channels []animation.Channel) (*LogicNode, error) {
	anim, err := animation.NewNode(name, channels)
	if err != nil {
		return nil, err
	}
	in, out := animation.InputDecl(), anim.OutputDecl()
	inputs, outputs, err := buildRoots(id, &in, &out, property.AnimationInput, property.AnimationOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create AnimationNode '%s': %w", name, err)
	}
	return &LogicNode{
		id: id, name: name, kind: KindAnimation, inputs: inputs, outputs: outputs,
		dirty: true, anim: anim,
	}, nil
}

func newTimerNode(id NodeID, name string, clock timer.Clock) (*LogicNode, error) {
	in, out := timer.InputDecl(), timer.OutputDecl()
	inputs, outputs, err := buildRoots(id, &in, &out, property.ScriptInput, property.ScriptOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create TimerNode '%s': %w", name, err)
	}
	return &LogicNode{
		id: id, name: name, kind: KindTimer, inputs: inputs, outputs: outputs,
		dirty: true, timer: timer.NewNode(clock),
	}, nil
}

func newBindingNode(id NodeID, name, ref string, sink Sink, in property.Decl) (*LogicNode, error) {
	inputs, _, err := buildRoots(id, &in, nil, property.BindingInput, property.BindingInput)
	if err != nil {
		return nil, fmt.Errorf("failed to create binding '%s': %w", name, err)
	}
	return &LogicNode{
		id: id, name: name, kind: KindBinding, inputs: inputs,
		dirty: true, ref: ref, sink: sink,
	}, nil
}
