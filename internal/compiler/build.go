package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/property"
)

// Build validates g and instantiates it in e. Scripts and sinks come from
// r. Build is not atomic: on error e keeps whatever was created before the
// failure, so callers build into a fresh engine.
func Build(e *engine.Engine, g *Graph, r *Registry) error {
	if verrs := Validate(g); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return fmt.Errorf("invalid graph: %w", errors.Join(errs...))
	}

	arrays := make(map[string]*animation.DataArray, len(g.Arrays))
	for _, a := range g.Arrays {
		values := make([]property.Value, len(a.Values))
		for i, lit := range a.Values {
			v, err := lit.As(a.Type)
			if err != nil {
				return fmt.Errorf("array %q: %w", a.Name, err)
			}
			values[i] = v
		}
		da, err := e.CreateDataArray(a.Name, values)
		if err != nil {
			return err
		}
		arrays[a.Name] = da
	}

	for _, n := range g.Nodes {
		if err := buildNode(e, n, arrays, r); err != nil {
			return err
		}
	}

	for _, l := range g.Links {
		src, err := resolve(e, l.From, false)
		if err != nil {
			return err
		}
		tgt, err := resolve(e, l.To, true)
		if err != nil {
			return err
		}
		if err := e.Link(src, tgt); err != nil {
			return err
		}
	}

	for _, in := range g.Inputs {
		p, err := resolve(e, Endpoint{Node: in.Node, Path: in.Property}, true)
		if err != nil {
			return err
		}
		v, err := in.Value.As(p.Type())
		if err != nil {
			return fmt.Errorf("input %s.%s: %w", in.Node, in.Property, err)
		}
		if err := e.Set(p, v); err != nil {
			return err
		}
	}
	return nil
}

func buildNode(e *engine.Engine, n NodeDecl, arrays map[string]*animation.DataArray, r *Registry) error {
	in, out := property.Struct("IN"), property.Struct("OUT")
	if n.Inputs != nil {
		in = *n.Inputs
	}
	if n.Outputs != nil {
		out = *n.Outputs
	}

	var err error
	switch n.Kind {
	case KindScript:
		var s engine.Script
		if s, err = r.ResolveScript(n.Script); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		_, err = e.CreateScript(n.Name, n.Script, s, in, out)
	case KindBinding:
		var s engine.Sink
		if s, err = r.ResolveSink(n.Sink); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		_, err = e.CreateBinding(n.Name, n.Sink, s, in)
	case KindTimer:
		_, err = e.CreateTimer(n.Name)
	case KindAnimation:
		channels := make([]animation.Channel, len(n.Channels))
		for i, ch := range n.Channels {
			interp, perr := animation.ParseInterpolation(ch.Interpolation)
			if perr != nil {
				return fmt.Errorf("node %q: %w", n.Name, perr)
			}
			channels[i] = animation.Channel{
				Name:          ch.Name,
				Timestamps:    arrays[ch.Timestamps],
				Keyframes:     arrays[ch.Keyframes],
				Interpolation: interp,
				TangentsIn:    arrays[ch.TangentsIn],
				TangentsOut:   arrays[ch.TangentsOut],
			}
		}
		_, err = e.CreateAnimation(n.Name, channels)
	default:
		return fmt.Errorf("node %q: unknown kind %q", n.Name, n.Kind)
	}
	return err
}

func resolve(e *engine.Engine, ep Endpoint, input bool) (*property.Property, error) {
	n, ok := e.FindNode(ep.Node)
	if !ok {
		return nil, fmt.Errorf("unknown node %q", ep.Node)
	}
	var p *property.Property
	if input {
		p, ok = e.Input(n, ep.Path)
	} else {
		p, ok = e.Output(n, ep.Path)
	}
	if !ok {
		return nil, fmt.Errorf("node %q has no property %q", ep.Node, ep.Path)
	}
	return p, nil
}
