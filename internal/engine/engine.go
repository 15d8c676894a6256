package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/logicgraph/internal/animation"
	"github.com/roach88/logicgraph/internal/links"
	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/timer"
)

// Engine owns a logic graph and runs its updates.
//
// Thread-safety: none. Callers serialize every call. Scripts and sinks
// must not call back into the engine from Evaluate or Apply.
//
// Every mutating call (Create*, Destroy*, Link, Unlink, Set, Update, Save,
// Load) clears the error list first. A failing call returns its *Error
// and also appends it to the list.
type Engine struct {
	logger        *slog.Logger
	clock         timer.Clock
	dirtyTracking bool
	reporting     bool

	st     *graphState
	frames *Sequence
	report *UpdateReport
	errs   []*Error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimerClock sets the clock timer nodes read in auto mode.
//
// Default: a timer.SteadyClock created with the engine.
// Tests pass testutil.DeterministicClock for reproducible deltas.
func WithTimerClock(c timer.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithDirtyTracking enables or disables dirty tracking. With tracking
// disabled every node is evaluated on every update, which is useful for
// diagnostics and benchmarks. Default: enabled.
func WithDirtyTracking(enabled bool) Option {
	return func(e *Engine) { e.dirtyTracking = enabled }
}

// WithUpdateReport enables collection of an UpdateReport on every update.
// Default: disabled.
func WithUpdateReport(enabled bool) Option {
	return func(e *Engine) { e.reporting = enabled }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        slog.New(slog.DiscardHandler),
		dirtyTracking: true,
		st:            newGraphState(0),
		frames:        NewSequence(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = timer.NewSteadyClock()
	}
	return e
}

// SetDirtyTracking toggles dirty tracking after construction.
func (e *Engine) SetDirtyTracking(enabled bool) { e.dirtyTracking = enabled }

// EnableUpdateReport toggles report collection after construction.
// Disabling it drops the last report.
func (e *Engine) EnableUpdateReport(enabled bool) {
	e.reporting = enabled
	if !enabled {
		e.report = nil
	}
}

// Errors returns the errors recorded since the last mutating call.
func (e *Engine) Errors() []*Error {
	return slices.Clone(e.errs)
}

func (e *Engine) clearErrors() { e.errs = e.errs[:0] }

// fail records err and returns it.
func (e *Engine) fail(err *Error) error {
	e.errs = append(e.errs, err)
	attrs := []any{"code", string(err.Code)}
	if err.NodeName != "" {
		attrs = append(attrs, "node", err.NodeName, "id", uint64(err.NodeID))
	}
	e.logger.Error(err.Message, attrs...)
	return err
}

// CreateDataArray creates a named, immutable data array for animation
// channels.
func (e *Engine) CreateDataArray(name string, values []property.Value) (*animation.DataArray, error) {
	e.clearErrors()
	a, err := animation.NewDataArray(name, values)
	if err != nil {
		return nil, e.fail(newError(ErrCodeConstruction, nil, err))
	}
	e.st.arrays = append(e.st.arrays, a)
	e.logger.Debug("data array created", "name", name, "type", a.Type().String(), "len", a.Len())
	return a, nil
}

// CreateScript creates a script node. ref names the implementation so a
// saved graph can resolve it again on load.
func (e *Engine) CreateScript(name, ref string, s Script, inputs, outputs property.Decl) (*LogicNode, error) {
	e.clearErrors()
	n, err := newScriptNode(e.st.nextID(), name, ref, s, inputs, outputs)
	if err != nil {
		return nil, e.fail(newError(ErrCodeConstruction, nil, err))
	}
	return e.add(n), nil
}

// CreateAnimation creates an animation node. Every array referenced by
// channels must have been created by this engine.
func (e *Engine) CreateAnimation(name string, channels []animation.Channel) (*LogicNode, error) {
	e.clearErrors()
	for _, ch := range channels {
		for _, a := range ch.Arrays() {
			if !e.st.ownsArray(a) {
				return nil, e.fail(newErrorf(ErrCodeConstruction, nil,
					"failed to create AnimationNode '%s': data array '%s' does not belong to this engine", name, a.Name()))
			}
		}
	}
	n, err := newAnimationNode(e.st.nextID(), name, channels)
	if err != nil {
		return nil, e.fail(newError(ErrCodeConstruction, nil, err))
	}
	return e.add(n), nil
}

// CreateTimer creates a timer node reading the engine's timer clock.
func (e *Engine) CreateTimer(name string) (*LogicNode, error) {
	e.clearErrors()
	n, err := newTimerNode(e.st.nextID(), name, e.clock)
	if err != nil {
		return nil, e.fail(newError(ErrCodeConstruction, nil, err))
	}
	return e.add(n), nil
}

// CreateBinding creates a binding node that pushes changed inputs to
// sink. A nil sink makes every evaluation a no-op.
func (e *Engine) CreateBinding(name, ref string, sink Sink, inputs property.Decl) (*LogicNode, error) {
	e.clearErrors()
	n, err := newBindingNode(e.st.nextID(), name, ref, sink, inputs)
	if err != nil {
		return nil, e.fail(newError(ErrCodeConstruction, nil, err))
	}
	return e.add(n), nil
}

func (e *Engine) add(n *LogicNode) *LogicNode {
	e.st.register(n)
	e.logger.Debug("node created", "node", n.name, "id", uint64(n.id), "kind", n.kind.String())
	return n
}

// Destroy removes a node together with every link that touches it. The
// former link targets keep their current values.
func (e *Engine) Destroy(n *LogicNode) error {
	e.clearErrors()
	if !e.st.ownsNode(n) {
		return e.fail(newErrorf(ErrCodeLookup, nil, "cannot destroy node: it does not belong to this engine"))
	}
	removed := e.st.remove(n)
	e.logger.Debug("node destroyed", "node", n.name, "id", uint64(n.id), "links_removed", len(removed))
	return nil
}

// DestroyDataArray removes a data array. It is refused while a live
// animation node references the array.
func (e *Engine) DestroyDataArray(a *animation.DataArray) error {
	e.clearErrors()
	if a == nil || !e.st.ownsArray(a) {
		return e.fail(newErrorf(ErrCodeLookup, nil, "cannot destroy data array: it does not belong to this engine"))
	}
	if a.RefCount() > 0 {
		users := e.st.usersOf(a)
		names := make([]string, len(users))
		for i, u := range users {
			names[i] = u.name
		}
		return e.fail(newErrorf(ErrCodeInUse, nil,
			"failed to destroy data array '%s': it is used by animation node(s) %q", a.Name(), names))
	}
	i := slices.Index(e.st.arrays, a)
	e.st.arrays = slices.Delete(e.st.arrays, i, i+1)
	return nil
}

// Node returns the node with the given id.
func (e *Engine) Node(id NodeID) (*LogicNode, bool) {
	n, ok := e.st.nodes[id]
	return n, ok
}

// FindNode returns the first node, in creation order, with the given name.
func (e *Engine) FindNode(name string) (*LogicNode, bool) {
	for _, n := range e.st.order {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns every node in creation order.
func (e *Engine) Nodes() []*LogicNode {
	return slices.Clone(e.st.order)
}

// DataArrays returns every data array in creation order.
func (e *Engine) DataArrays() []*animation.DataArray {
	return slices.Clone(e.st.arrays)
}

// FindDataArray returns the first data array with the given name.
func (e *Engine) FindDataArray(name string) (*animation.DataArray, bool) {
	for _, a := range e.st.arrays {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Input resolves a dotted input path of n. Unknown paths are logged and
// reported as not found.
func (e *Engine) Input(n *LogicNode, path string) (*property.Property, bool) {
	return e.lookup(n, n.inputs, "input", path)
}

// Output resolves a dotted output path of n. Unknown paths are logged and
// reported as not found.
func (e *Engine) Output(n *LogicNode, path string) (*property.Property, bool) {
	return e.lookup(n, n.outputs, "output", path)
}

func (e *Engine) lookup(n *LogicNode, root *property.Property, side, path string) (*property.Property, bool) {
	if root == nil {
		e.logger.Warn("node has no "+side+"s", "node", n.name, "id", uint64(n.id))
		return nil, false
	}
	p, ok := root.Find(path)
	if !ok {
		e.logger.Warn(side+" not found", "node", n.name, "id", uint64(n.id), "path", path)
	}
	return p, ok
}

// Set assigns a value to an input property and marks its node dirty when
// the value changed, or always for binding and animation inputs.
func (e *Engine) Set(p *property.Property, v property.Value) error {
	e.clearErrors()
	n, err := e.st.owner(p)
	if err != nil {
		return e.fail(newError(ErrCodeLookup, nil, err))
	}
	dirty, err := p.Assign(v)
	if err != nil {
		return e.fail(newError(ErrCodeAssignment, n, err))
	}
	if dirty {
		n.dirty = true
	}
	return nil
}

// Link connects an output primitive to an input primitive of another
// node. The target receives the source value during the next update.
func (e *Engine) Link(src, tgt *property.Property) error {
	e.clearErrors()
	if _, err := e.st.owner(src); err != nil {
		return e.fail(newError(ErrCodeLookup, nil, err))
	}
	target, err := e.st.owner(tgt)
	if err != nil {
		return e.fail(newError(ErrCodeLookup, nil, err))
	}
	if err := e.st.link(src, tgt); err != nil {
		return e.fail(newError(ErrCodeLink, target, err))
	}
	target.dirty = true
	e.logger.Debug("linked", "source", src.DisplayPath(), "target", tgt.DisplayPath(), "node", target.name)
	return nil
}

// Unlink removes the incoming link of tgt. The target keeps its value.
func (e *Engine) Unlink(tgt *property.Property) error {
	e.clearErrors()
	target, err := e.st.owner(tgt)
	if err != nil {
		return e.fail(newError(ErrCodeLookup, nil, err))
	}
	if err := e.st.unlink(tgt); err != nil {
		return e.fail(newError(ErrCodeLink, target, err))
	}
	return nil
}

// IsLinked reports whether any input or output primitive of n takes part
// in a link.
func (e *Engine) IsLinked(n *LogicNode) bool {
	return e.st.links.NodeIsLinked(n.inputs, n.outputs)
}

// IsPropertyLinked reports whether p is a link source or target.
func (e *Engine) IsPropertyLinked(p *property.Property) bool {
	return e.st.links.IsLinked(p)
}

// Links returns every link ordered by target node id, then target path.
func (e *Engine) Links() []links.Link {
	return e.st.links.Links()
}

// SortedNodes returns the nodes in execution order, or a cycle error.
func (e *Engine) SortedNodes() ([]*LogicNode, error) {
	order, err := e.sorted()
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (e *Engine) sorted() ([]*LogicNode, *Error) {
	ids, err := e.st.deps.Sorted()
	if err != nil {
		return nil, newError(ErrCodeGraphHasCycle, nil,
			fmt.Errorf("failed to sort logic nodes, the link graph must be loop-free: %w", err))
	}
	out := make([]*LogicNode, len(ids))
	for i, id := range ids {
		n, ok := e.st.nodes[id]
		if !ok {
			panic(fmt.Sprintf("engine: sorted order holds unknown node %d", id))
		}
		out[i] = n
	}
	return out, nil
}
