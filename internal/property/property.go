package property

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID is a handle to the logic node that owns a property tree.
// Zero means "no owner" and is never assigned to a live node.
type NodeID uint64

// Property is one node of a typed property tree.
type Property struct {
	name      string
	typ       Type
	semantics Semantics
	owner     NodeID

	value    Value // nil unless primitive
	children []*Property
	parent   *Property
	index    int

	linked  bool // has an incoming link
	changed bool // value changed since last consumed
}

// Build creates a property tree from a declaration. Every property in the
// tree gets the same semantics and owner; primitives start at Zero.
func Build(d Decl, sem Semantics, owner NodeID) (*Property, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return build(d, sem, owner, nil, 0), nil
}

func build(d Decl, sem Semantics, owner NodeID, parent *Property, index int) *Property {
	p := &Property{
		name:      d.Name,
		typ:       d.Type,
		semantics: sem,
		owner:     owner,
		parent:    parent,
		index:     index,
		value:     Zero(d.Type),
	}
	if len(d.Children) > 0 {
		p.children = make([]*Property, len(d.Children))
		for i, c := range d.Children {
			p.children[i] = build(c, sem, owner, p, i)
		}
	}
	return p
}

func (p *Property) Name() string         { return p.name }
func (p *Property) Type() Type           { return p.typ }
func (p *Property) Semantics() Semantics { return p.semantics }
func (p *Property) Role() Role           { return p.semantics.Role() }
func (p *Property) Owner() NodeID        { return p.owner }
func (p *Property) Parent() *Property    { return p.parent }
func (p *Property) IsPrimitive() bool    { return p.typ.IsPrimitive() }

// Value returns the current value, or nil for struct and array properties.
func (p *Property) Value() Value { return p.value }

// ChildCount returns the number of direct children.
func (p *Property) ChildCount() int { return len(p.children) }

// Child returns the child at index i in O(1).
func (p *Property) Child(i int) (*Property, bool) {
	if i < 0 || i >= len(p.children) {
		return nil, false
	}
	return p.children[i], true
}

// ChildByName returns the first child with the given name. Lookup is case
// sensitive and linear in the number of children.
func (p *Property) ChildByName(name string) (*Property, bool) {
	for _, c := range p.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Children returns a copy of the child slice.
func (p *Property) Children() []*Property {
	out := make([]*Property, len(p.children))
	copy(out, p.children)
	return out
}

// Path returns the child-index path from the tree root to p. The root has
// an empty path. Paths are stable for a given declaration.
func (p *Property) Path() []int {
	var rev []int
	for cur := p; cur.parent != nil; cur = cur.parent {
		rev = append(rev, cur.index)
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// Lookup resolves a child-index path relative to p.
func (p *Property) Lookup(path []int) (*Property, bool) {
	cur := p
	for _, idx := range path {
		next, ok := cur.Child(idx)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Find resolves a dotted name path such as "rotation.x" relative to p.
// Array elements are addressed by their decimal index ("items.2").
func (p *Property) Find(dotted string) (*Property, bool) {
	if dotted == "" {
		return p, true
	}
	cur := p
	for _, seg := range strings.Split(dotted, ".") {
		var next *Property
		var ok bool
		if cur.typ == TypeArray {
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, false
			}
			next, ok = cur.Child(idx)
		} else {
			next, ok = cur.ChildByName(seg)
		}
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// DisplayPath returns the dotted name path from the root, excluding the
// root's own name. Array elements appear as their index.
func (p *Property) DisplayPath() string {
	var parts []string
	for cur := p; cur.parent != nil; cur = cur.parent {
		if cur.parent.typ == TypeArray {
			parts = append(parts, strconv.Itoa(cur.index))
		} else {
			parts = append(parts, cur.name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Decl reconstructs the declaration this tree was built from.
func (p *Property) Decl() Decl {
	d := Decl{Name: p.name, Type: p.typ}
	if len(p.children) > 0 {
		d.Children = make([]Decl, len(p.children))
		for i, c := range p.children {
			d.Children[i] = c.Decl()
		}
	}
	return d
}

// Walk visits p and every descendant in pre-order. Returning an error from
// fn stops the walk.
func (p *Property) Walk(fn func(*Property) error) error {
	if err := fn(p); err != nil {
		return err
	}
	for _, c := range p.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Primitives returns every primitive property under p in pre-order.
func (p *Property) Primitives() []*Property {
	var out []*Property
	_ = p.Walk(func(c *Property) error {
		if c.IsPrimitive() {
			out = append(out, c)
		}
		return nil
	})
	return out
}

// Get returns p's value as T. It fails when p is not primitive or the
// stored value is of a different type.
func Get[T Value](p *Property) (T, bool) {
	var zero T
	if p == nil || !p.IsPrimitive() {
		return zero, false
	}
	v, ok := p.value.(T)
	return v, ok
}

func (p *Property) checkValue(v Value) error {
	if !p.IsPrimitive() {
		return fmt.Errorf("%w: %q is %s", ErrNotPrimitive, p.name, p.typ)
	}
	if v == nil || v.Type() != p.typ {
		got := "nil"
		if v != nil {
			got = v.Type().String()
		}
		return fmt.Errorf("%w: %q is %s, value is %s", ErrTypeMismatch, p.name, p.typ, got)
	}
	return nil
}

// Assign is the user-facing setter. It rejects outputs, linked inputs,
// non-primitives and mismatched types. It reports whether the owning node
// must be marked dirty.
func (p *Property) Assign(v Value) (bool, error) {
	if err := p.checkValue(v); err != nil {
		return false, err
	}
	if p.Role() == RoleOutput {
		return false, fmt.Errorf("%w: %q", ErrOutputNotSettable, p.name)
	}
	if p.linked {
		return false, fmt.Errorf("%w: %q has an incoming link", ErrLinkedInput, p.name)
	}
	return p.store(v), nil
}

// Receive writes a value delivered over a link. Link validation guarantees
// matching types; a mismatch here is an invariant violation.
func (p *Property) Receive(v Value) bool {
	if err := p.checkValue(v); err != nil {
		panic(fmt.Sprintf("property: link delivered invalid value: %v", err))
	}
	return p.store(v)
}

func (p *Property) store(v Value) bool {
	dirty := false
	if p.value != v {
		p.value = v
		p.changed = true
		dirty = true
	}
	if p.semantics.AlwaysDirties() {
		p.changed = true
		dirty = true
	}
	return dirty
}

// Write is used by a node to publish one of its own values, typically an
// output. It reports whether the value changed.
func (p *Property) Write(v Value) (bool, error) {
	if err := p.checkValue(v); err != nil {
		return false, err
	}
	if p.value == v {
		return false, nil
	}
	p.value = v
	p.changed = true
	return true, nil
}

// Changed reports whether the value changed (or, for binding and
// animation inputs, was written) since the flag was last reset.
func (p *Property) Changed() bool { return p.changed }

// ResetChanged clears the changed flag on p and all descendants.
func (p *Property) ResetChanged() {
	p.changed = false
	for _, c := range p.children {
		c.ResetChanged()
	}
}

// IsLinked reports whether p has an incoming link.
func (p *Property) IsLinked() bool { return p.linked }

// SetLinked records incoming-link state. Only the link table calls this.
func (p *Property) SetLinked(linked bool) { p.linked = linked }

// String renders "name:Type" for diagnostics.
func (p *Property) String() string {
	return fmt.Sprintf("%s:%s", p.name, p.typ)
}
