package timer

import (
	"fmt"

	"github.com/roach88/logicgraph/internal/property"
)

// Property names.
const (
	InputTicker     = "ticker_us"
	OutputTimeDelta = "timeDelta"
	OutputTicker    = "ticker_us"
)

// Node holds the ticker state for one timer node.
type Node struct {
	clock    Clock
	lastTick int64
	hasTick  bool
	auto     bool
}

// NewNode creates a timer node reading clock in auto mode. A nil clock
// uses a SteadyClock.
func NewNode(clock Clock) *Node {
	if clock == nil {
		clock = NewSteadyClock()
	}
	return &Node{clock: clock}
}

// InputDecl declares the timer inputs.
func InputDecl() property.Decl {
	return property.Struct("IN", property.Prim(InputTicker, property.TypeInt64))
}

// OutputDecl declares the timer outputs.
func OutputDecl() property.Decl {
	return property.Struct("OUT",
		property.Prim(OutputTimeDelta, property.TypeFloat),
		property.Prim(OutputTicker, property.TypeInt64),
	)
}

// Evaluate resolves the current ticker, computes the delta since the
// previous evaluation and writes both outputs. name is used in error
// messages.
func (n *Node) Evaluate(name string, in, out *property.Property) error {
	tickerProp, _ := in.Child(0)
	ticker, _ := property.Get[property.Int64](tickerProp)
	if ticker < 0 {
		return fmt.Errorf("TimerNode '%s' failed to update - cannot use negative ticker (%d)", name, ticker)
	}

	var now int64
	if ticker == 0 {
		now = n.clock.NowMicros()
		if !n.auto {
			n.hasTick = false
		}
		n.auto = true
	} else {
		now = int64(ticker)
		if n.auto {
			n.hasTick = false
		}
		n.auto = false
	}

	if !n.hasTick {
		n.lastTick = now
		n.hasTick = true
	}
	if now < n.lastTick {
		return fmt.Errorf("TimerNode '%s' failed to update - ticker must be monotonically increasing (lastTick=%d newTick=%d)",
			name, n.lastTick, now)
	}

	deltaUs := now - n.lastTick
	n.lastTick = now

	deltaProp, _ := out.Child(0)
	if _, err := deltaProp.Write(property.Float(float32(1e-6 * float64(deltaUs)))); err != nil {
		return err
	}
	outTicker, _ := out.Child(1)
	_, err := outTicker.Write(property.Int64(now))
	return err
}
