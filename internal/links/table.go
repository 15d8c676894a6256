package links

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/logicgraph/internal/property"
)

var (
	ErrNotPrimitive    = errors.New("link endpoints must be primitive properties")
	ErrSourceNotOutput = errors.New("link source must be an output")
	ErrTargetNotInput  = errors.New("link target must be an input")
	ErrSameNode        = errors.New("source and target belong to the same node")
	ErrTypeMismatch    = errors.New("source and target types differ")
	ErrAlreadyLinked   = errors.New("target is already linked")
	ErrNotLinked       = errors.New("target has no incoming link")
)

// Link is one (source, target) edge.
type Link struct {
	Source *property.Property
	Target *property.Property
}

// Table is the link table. The zero value is not usable; call New.
type Table struct {
	bySource map[*property.Property][]*property.Property
	byTarget map[*property.Property]*property.Property
}

// New creates an empty link table.
func New() *Table {
	return &Table{
		bySource: make(map[*property.Property][]*property.Property),
		byTarget: make(map[*property.Property]*property.Property),
	}
}

// Validate checks whether (src, tgt) could be linked without mutating the
// table.
func (t *Table) Validate(src, tgt *property.Property) error {
	if src == nil || tgt == nil || !src.IsPrimitive() || !tgt.IsPrimitive() {
		return ErrNotPrimitive
	}
	if src.Role() != property.RoleOutput {
		return fmt.Errorf("%w: failed to link %s property '%s' to property '%s'",
			ErrSourceNotOutput, src.Role(), src.Name(), tgt.Name())
	}
	if tgt.Role() != property.RoleInput {
		return fmt.Errorf("%w: failed to link property '%s' to %s property '%s'",
			ErrTargetNotInput, src.Name(), tgt.Role(), tgt.Name())
	}
	if src.Owner() == tgt.Owner() {
		return ErrSameNode
	}
	if src.Type() != tgt.Type() {
		return fmt.Errorf("%w: source property '%s' does not match target property '%s'",
			ErrTypeMismatch, src, tgt)
	}
	if existing, ok := t.byTarget[tgt]; ok {
		return fmt.Errorf("%w: property '%s' is already linked to property '%s'",
			ErrAlreadyLinked, tgt.DisplayPath(), existing.DisplayPath())
	}
	return nil
}

// Link records src -> tgt. The target value is not copied here; values
// flow only during an update.
func (t *Table) Link(src, tgt *property.Property) error {
	if err := t.Validate(src, tgt); err != nil {
		return err
	}
	t.byTarget[tgt] = src
	t.bySource[src] = append(t.bySource[src], tgt)
	tgt.SetLinked(true)
	return nil
}

// Unlink removes the incoming link of tgt and returns its former source.
// The target keeps its current value.
func (t *Table) Unlink(tgt *property.Property) (*property.Property, error) {
	src, ok := t.byTarget[tgt]
	if !ok {
		name := "<nil>"
		if tgt != nil {
			name = tgt.DisplayPath()
		}
		return nil, fmt.Errorf("%w: '%s'", ErrNotLinked, name)
	}
	t.remove(src, tgt)
	return src, nil
}

func (t *Table) remove(src, tgt *property.Property) {
	delete(t.byTarget, tgt)
	targets := t.bySource[src]
	if i := slices.Index(targets, tgt); i >= 0 {
		targets = slices.Delete(targets, i, i+1)
	}
	if len(targets) == 0 {
		delete(t.bySource, src)
	} else {
		t.bySource[src] = targets
	}
	tgt.SetLinked(false)
}

// UnlinkAll removes every link whose target lies under inputs or whose
// source lies under outputs. Either root may be nil. The removed links are
// returned so callers can update dependent structures.
func (t *Table) UnlinkAll(inputs, outputs *property.Property) []Link {
	var removed []Link
	if inputs != nil {
		for _, tgt := range inputs.Primitives() {
			if src, ok := t.byTarget[tgt]; ok {
				t.remove(src, tgt)
				removed = append(removed, Link{Source: src, Target: tgt})
			}
		}
	}
	if outputs != nil {
		for _, src := range outputs.Primitives() {
			for _, tgt := range slices.Clone(t.bySource[src]) {
				t.remove(src, tgt)
				removed = append(removed, Link{Source: src, Target: tgt})
			}
		}
	}
	return removed
}

// Source returns the source linked into tgt.
func (t *Table) Source(tgt *property.Property) (*property.Property, bool) {
	src, ok := t.byTarget[tgt]
	return src, ok
}

// Targets returns the targets fed by src in link creation order.
func (t *Table) Targets(src *property.Property) []*property.Property {
	return slices.Clone(t.bySource[src])
}

// IsLinked reports whether p is a link target or a link source.
func (t *Table) IsLinked(p *property.Property) bool {
	if _, ok := t.byTarget[p]; ok {
		return true
	}
	return len(t.bySource[p]) > 0
}

// NodeIsLinked reports whether any primitive under inputs or outputs takes
// part in a link.
func (t *Table) NodeIsLinked(inputs, outputs *property.Property) bool {
	for _, root := range []*property.Property{inputs, outputs} {
		if root == nil {
			continue
		}
		for _, p := range root.Primitives() {
			if t.IsLinked(p) {
				return true
			}
		}
	}
	return false
}

// Len returns the number of links.
func (t *Table) Len() int { return len(t.byTarget) }

// Links returns every link ordered by target owner, then target path, so
// the result is deterministic across runs.
func (t *Table) Links() []Link {
	out := make([]Link, 0, len(t.byTarget))
	for tgt, src := range t.byTarget {
		out = append(out, Link{Source: src, Target: tgt})
	}
	slices.SortFunc(out, func(a, b Link) int {
		if a.Target.Owner() != b.Target.Owner() {
			if a.Target.Owner() < b.Target.Owner() {
				return -1
			}
			return 1
		}
		return slices.Compare(a.Target.Path(), b.Target.Path())
	})
	return out
}
