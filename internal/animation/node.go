package animation

import (
	"fmt"
	"math"

	"github.com/roach88/logicgraph/internal/property"
)

// Fixed input and output names.
const (
	InputTimeDelta    = "timeDelta"
	InputPlay         = "play"
	InputLoop         = "loop"
	InputRewindOnStop = "rewindOnStop"
	InputTimeRange    = "timeRange"

	OutputProgress = "progress"
)

// Positions of the fixed properties. Channel outputs start at
// outputChannelsBegin.
const (
	inputTimeDelta = iota
	inputPlay
	inputLoop
	inputRewindOnStop
	inputTimeRange
)

const (
	outputProgress      = 0
	outputChannelsBegin = 1
)

// Node holds channel configuration and play state for one animation node.
type Node struct {
	channels []Channel
	duration float32
	elapsed  float32 // offset from the time range begin
}

// NewNode validates channels and creates the node state.
func NewNode(name string, channels []Channel) (*Node, error) {
	if err := ValidateChannels(name, channels); err != nil {
		return nil, err
	}
	n := &Node{channels: append([]Channel(nil), channels...)}
	for _, ch := range n.channels {
		n.duration = max(n.duration, ch.Duration())
	}
	return n, nil
}

// InputDecl declares the fixed animation inputs.
func InputDecl() property.Decl {
	return property.Struct("IN",
		property.Prim(InputTimeDelta, property.TypeFloat),
		property.Prim(InputPlay, property.TypeBool),
		property.Prim(InputLoop, property.TypeBool),
		property.Prim(InputRewindOnStop, property.TypeBool),
		property.Prim(InputTimeRange, property.TypeVec2f),
	)
}

// OutputDecl declares progress plus one output per channel.
func (n *Node) OutputDecl() property.Decl {
	children := []property.Decl{property.Prim(OutputProgress, property.TypeFloat)}
	for _, ch := range n.channels {
		children = append(children, property.Prim(ch.Name, ch.Keyframes.Type()))
	}
	return property.Struct("OUT", children...)
}

// Duration is the largest last timestamp over all channels. It does not
// depend on the time range input.
func (n *Node) Duration() float32 { return n.duration }

// Channels returns a copy of the channel configuration.
func (n *Node) Channels() []Channel { return append([]Channel(nil), n.channels...) }

// Elapsed returns the play offset from the time range begin.
func (n *Node) Elapsed() float32 { return n.elapsed }

// Retain marks every referenced DataArray as used by this node.
func (n *Node) Retain() {
	for _, ch := range n.channels {
		for _, a := range ch.Arrays() {
			a.Retain()
		}
	}
}

// Release undoes Retain.
func (n *Node) Release() {
	for _, ch := range n.channels {
		for _, a := range ch.Arrays() {
			a.Release()
		}
	}
}

func child[T property.Value](root *property.Property, i int) T {
	c, _ := root.Child(i)
	v, _ := property.Get[T](c)
	return v
}

// Evaluate advances the play state from the inputs and writes progress and
// channel outputs. name is used in error messages.
func (n *Node) Evaluate(name string, in, out *property.Property) error {
	delta := float32(child[property.Float](in, inputTimeDelta))
	if delta < 0 {
		return fmt.Errorf("AnimationNode '%s' failed to update - cannot use negative timeDelta (%g)", name, delta)
	}

	tr := child[property.Vec2f](in, inputTimeRange)
	begin, end := tr[0], tr[1]
	if begin < 0 || (end > 0 && end <= begin) {
		return fmt.Errorf("AnimationNode '%s' failed to update - time range begin must be smaller than end and not negative (given time range [%g, %g])",
			name, begin, end)
	}
	if end <= 0 {
		end = n.duration
	}
	length := end - begin

	play := bool(child[property.Bool](in, inputPlay))
	loop := bool(child[property.Bool](in, inputLoop))
	rewind := bool(child[property.Bool](in, inputRewindOnStop))

	switch {
	case !play:
		if rewind && n.elapsed > 0 {
			n.elapsed = 0
		}
	case n.elapsed >= length && !loop:
		// finished
	default:
		n.elapsed += delta
		if loop && length > 0 {
			n.elapsed = float32(math.Mod(float64(n.elapsed), float64(length)))
		} else {
			n.elapsed = min(n.elapsed, max(length, 0))
		}
	}

	offset := n.elapsed
	progress := float32(1)
	if length > 0 {
		offset = min(offset, length)
		progress = min(offset/length, 1)
	} else {
		offset = 0
	}

	if err := n.write(out, outputProgress, property.Float(progress)); err != nil {
		return err
	}
	for i, ch := range n.channels {
		if err := n.write(out, outputChannelsBegin+i, ch.Sample(begin+offset)); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) write(out *property.Property, i int, v property.Value) error {
	p, ok := out.Child(i)
	if !ok {
		return fmt.Errorf("animation output %d missing", i)
	}
	_, err := p.Write(v)
	return err
}
