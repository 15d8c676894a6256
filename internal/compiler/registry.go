package compiler

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/property"
)

// Registry maps declaration names to script and sink implementations.
// It implements engine.Resolver, so the same registry serves Build and
// Engine.Load.
type Registry struct {
	scripts map[string]engine.Script
	sinks   map[string]engine.Sink
}

// NewRegistry creates a registry holding the builtin scripts
// "passthrough", "sum" and "scale".
func NewRegistry() *Registry {
	r := &Registry{
		scripts: make(map[string]engine.Script),
		sinks:   make(map[string]engine.Sink),
	}
	r.RegisterScript("passthrough", engine.ScriptFunc(passthrough))
	r.RegisterScript("sum", engine.ScriptFunc(sum))
	r.RegisterScript("scale", engine.ScriptFunc(scale))
	return r
}

// RegisterScript adds or replaces a script.
func (r *Registry) RegisterScript(name string, s engine.Script) {
	r.scripts[name] = s
}

// RegisterSink adds or replaces a sink.
func (r *Registry) RegisterSink(name string, s engine.Sink) {
	r.sinks[name] = s
}

// Scripts returns the registered script names in sorted order.
func (r *Registry) Scripts() []string {
	return slices.Sorted(maps.Keys(r.scripts))
}

// ResolveScript implements engine.Resolver.
func (r *Registry) ResolveScript(ref string) (engine.Script, error) {
	s, ok := r.scripts[ref]
	if !ok {
		return nil, fmt.Errorf("unknown script %q", ref)
	}
	return s, nil
}

// ResolveSink implements engine.Resolver.
func (r *Registry) ResolveSink(ref string) (engine.Sink, error) {
	s, ok := r.sinks[ref]
	if !ok {
		return nil, fmt.Errorf("unknown sink %q", ref)
	}
	return s, nil
}

// passthrough copies every input primitive to the output with the same
// path and type. Inputs without a matching output are ignored.
func passthrough(in, out *property.Property) error {
	for _, src := range in.Primitives() {
		dst, ok := out.Find(src.DisplayPath())
		if !ok || dst.Type() != src.Type() {
			continue
		}
		if _, err := dst.Write(src.Value()); err != nil {
			return err
		}
	}
	return nil
}

// sum adds all scalar numeric inputs into the Float output "sum".
func sum(in, out *property.Property) error {
	dst, ok := out.Find("sum")
	if !ok || dst.Type() != property.TypeFloat {
		return fmt.Errorf("sum needs a float output named 'sum'")
	}
	var total float64
	for _, p := range in.Primitives() {
		switch p.Type() {
		case property.TypeFloat, property.TypeInt32, property.TypeInt64:
			total += property.Components(p.Value())[0]
		}
	}
	_, err := dst.Write(property.Float(total))
	return err
}

// scale writes value * factor to the output "value". value may be any
// float based type.
func scale(in, out *property.Property) error {
	value, ok := in.Find("value")
	if !ok {
		return fmt.Errorf("scale needs an input named 'value'")
	}
	factor, ok := in.Find("factor")
	if !ok || factor.Type() != property.TypeFloat {
		return fmt.Errorf("scale needs a float input named 'factor'")
	}
	dst, ok := out.Find("value")
	if !ok || dst.Type() != value.Type() || !value.Type().IsFloatBased() {
		return fmt.Errorf("scale needs matching float based 'value' input and output")
	}
	f, _ := property.Get[property.Float](factor)
	comps := property.Components(value.Value())
	for i := range comps {
		comps[i] *= float64(f)
	}
	v, err := property.FromComponents(value.Type(), comps)
	if err != nil {
		return err
	}
	_, err = dst.Write(v)
	return err
}
