package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/snapshot"
)

// Resolver supplies script and sink implementations by reference name
// when a saved graph is loaded.
type Resolver interface {
	ResolveScript(ref string) (Script, error)
	ResolveSink(ref string) (Sink, error)
}

var errNoResolver = errors.New("no resolver given")

// Save encodes the graph as a canonical snapshot. A graph whose links form
// a cycle is refused.
func (e *Engine) Save() ([]byte, error) {
	e.clearErrors()
	if _, err := e.sorted(); err != nil {
		return nil, e.fail(err)
	}
	data, err := snapshot.Encode(e.snapshot())
	if err != nil {
		return nil, e.fail(newError(ErrCodePersistence, nil, err))
	}
	e.logger.Debug("graph saved", "nodes", len(e.st.order), "links", e.st.links.Len(), "bytes", len(data))
	return data, nil
}

func (e *Engine) snapshot() *snapshot.Snapshot {
	s := snapshot.New()
	s.NextID = int64(e.st.ids.Current()) + 1

	arrayIndex := make(map[*animation.DataArray]int, len(e.st.arrays))
	for i, a := range e.st.arrays {
		arrayIndex[a] = i
		rec := snapshot.DataArray{Name: a.Name(), Type: a.Type().String()}
		for _, v := range a.Values() {
			rec.Values = append(rec.Values, snapshot.FromValue(v))
		}
		s.DataArrays = append(s.DataArrays, rec)
	}
	indexOf := func(a *animation.DataArray) int {
		if a == nil {
			return -1
		}
		return arrayIndex[a]
	}

	for _, n := range e.st.order {
		rec := snapshot.Node{
			ID:     int64(n.id),
			Kind:   n.kind.String(),
			Name:   n.name,
			Ref:    n.ref,
			Inputs: snapshot.FromProperty(n.inputs),
		}
		if n.outputs != nil {
			out := snapshot.FromProperty(n.outputs)
			rec.Outputs = &out
		}
		if n.anim != nil {
			for _, ch := range n.anim.Channels() {
				rec.Channels = append(rec.Channels, snapshot.Channel{
					Name:          ch.Name,
					Timestamps:    indexOf(ch.Timestamps),
					Keyframes:     indexOf(ch.Keyframes),
					Interpolation: ch.Interpolation.String(),
					TangentsIn:    indexOf(ch.TangentsIn),
					TangentsOut:   indexOf(ch.TangentsOut),
				})
			}
		}
		s.Nodes = append(s.Nodes, rec)
	}

	for _, l := range e.st.links.Links() {
		s.Links = append(s.Links, snapshot.Link{
			Source: snapshot.Endpoint{Node: int64(l.Source.Owner()), Path: l.Source.Path()},
			Target: snapshot.Endpoint{Node: int64(l.Target.Owner()), Path: l.Target.Path()},
		})
	}
	return s
}

// Load replaces the whole graph with a decoded snapshot. Scripts and sinks
// are resolved by reference through r; r may be nil when the snapshot
// holds neither. On any failure the current graph is left untouched.
func (e *Engine) Load(data []byte, r Resolver) error {
	e.clearErrors()
	s, err := snapshot.Decode(data)
	if err != nil {
		return e.fail(newError(ErrCodePersistence, nil, fmt.Errorf("failed to load graph: %w", err)))
	}
	st, err := e.restore(s, r)
	if err != nil {
		return e.fail(newError(ErrCodePersistence, nil, fmt.Errorf("failed to load graph: %w", err)))
	}
	e.st = st
	e.report = nil
	e.logger.Info("graph loaded", "nodes", len(st.order), "links", st.links.Len())
	return nil
}

// restore builds a fresh graph state from s without touching e.st.
func (e *Engine) restore(s *snapshot.Snapshot, r Resolver) (*graphState, error) {
	st := newGraphState(uint64(s.NextID - 1))

	for _, rec := range s.DataArrays {
		vals := make([]property.Value, len(rec.Values))
		for i, v := range rec.Values {
			val, err := v.ToValue()
			if err != nil {
				return nil, fmt.Errorf("data array '%s' element %d: %w", rec.Name, i, err)
			}
			vals[i] = val
		}
		a, err := animation.NewDataArray(rec.Name, vals)
		if err != nil {
			return nil, err
		}
		if a.Type().String() != rec.Type {
			return nil, fmt.Errorf("data array '%s' declares type %s but holds %s", rec.Name, rec.Type, a.Type())
		}
		st.arrays = append(st.arrays, a)
	}

	for _, rec := range s.Nodes {
		n, err := e.restoreNode(st, rec, r)
		if err != nil {
			return nil, fmt.Errorf("node '%s' (id=%d): %w", rec.Name, rec.ID, err)
		}
		st.register(n)
	}

	for i, rec := range s.Links {
		src, err := resolveEndpoint(st, rec.Source, false)
		if err != nil {
			return nil, fmt.Errorf("link %d source: %w", i, err)
		}
		tgt, err := resolveEndpoint(st, rec.Target, true)
		if err != nil {
			return nil, fmt.Errorf("link %d target: %w", i, err)
		}
		if err := st.link(src, tgt); err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
	}
	return st, nil
}

func (e *Engine) restoreNode(st *graphState, rec snapshot.Node, r Resolver) (*LogicNode, error) {
	kind, err := parseKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	id := NodeID(rec.ID)

	var n *LogicNode
	switch kind {
	case KindScript:
		if r == nil {
			return nil, fmt.Errorf("script '%s': %w", rec.Ref, errNoResolver)
		}
		script, err := r.ResolveScript(rec.Ref)
		if err != nil {
			return nil, fmt.Errorf("unresolved script '%s': %w", rec.Ref, err)
		}
		if rec.Outputs == nil {
			return nil, errors.New("script node has no outputs")
		}
		in, err := rec.Inputs.Decl()
		if err != nil {
			return nil, err
		}
		out, err := rec.Outputs.Decl()
		if err != nil {
			return nil, err
		}
		n, err = newScriptNode(id, rec.Name, rec.Ref, script, in, out)
		if err != nil {
			return nil, err
		}
	case KindAnimation:
		channels := make([]animation.Channel, len(rec.Channels))
		for i, ch := range rec.Channels {
			interp, err := animation.ParseInterpolation(ch.Interpolation)
			if err != nil {
				return nil, err
			}
			channels[i] = animation.Channel{
				Name:          ch.Name,
				Timestamps:    arrayAt(st, ch.Timestamps),
				Keyframes:     arrayAt(st, ch.Keyframes),
				Interpolation: interp,
				TangentsIn:    arrayAt(st, ch.TangentsIn),
				TangentsOut:   arrayAt(st, ch.TangentsOut),
			}
		}
		n, err = newAnimationNode(id, rec.Name, channels)
		if err != nil {
			return nil, err
		}
	case KindTimer:
		n, err = newTimerNode(id, rec.Name, e.clock)
		if err != nil {
			return nil, err
		}
	case KindBinding:
		var sink Sink
		if rec.Ref != "" {
			if r == nil {
				return nil, fmt.Errorf("sink '%s': %w", rec.Ref, errNoResolver)
			}
			if sink, err = r.ResolveSink(rec.Ref); err != nil {
				return nil, fmt.Errorf("unresolved sink '%s': %w", rec.Ref, err)
			}
		}
		in, err := rec.Inputs.Decl()
		if err != nil {
			return nil, err
		}
		n, err = newBindingNode(id, rec.Name, rec.Ref, sink, in)
		if err != nil {
			return nil, err
		}
	}

	if err := rec.Inputs.Apply(n.inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	switch {
	case n.outputs == nil && rec.Outputs != nil:
		return nil, errors.New("node kind has no outputs but outputs were recorded")
	case n.outputs != nil && rec.Outputs == nil:
		return nil, errors.New("outputs missing")
	case n.outputs != nil:
		if err := rec.Outputs.Apply(n.outputs); err != nil {
			return nil, fmt.Errorf("outputs: %w", err)
		}
	}
	return n, nil
}

func arrayAt(st *graphState, i int) *animation.DataArray {
	if i < 0 {
		return nil
	}
	return st.arrays[i]
}

func resolveEndpoint(st *graphState, ep snapshot.Endpoint, input bool) (*property.Property, error) {
	n, ok := st.nodes[NodeID(ep.Node)]
	if !ok {
		return nil, fmt.Errorf("unknown node id %d", ep.Node)
	}
	root := n.outputs
	if input {
		root = n.inputs
	}
	if root == nil {
		return nil, fmt.Errorf("node '%s' has no outputs", n.name)
	}
	p, ok := root.Lookup(ep.Path)
	if !ok {
		return nil, fmt.Errorf("path %v does not resolve in node '%s'", ep.Path, n.name)
	}
	return p, nil
}
