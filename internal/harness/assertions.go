package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [frame %d] executed=%v skipped=%v", ev.Frame, ev.Executed, ev.Skipped)
		if ev.Error != "" {
			fmt.Fprintf(&buf, " error=%s", ev.Error)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func evaluateAssertion(trace []TraceEvent, a Assertion) error {
	switch a.Type {
	case AssertExecutedOrder:
		return assertExecutedOrder(trace, a)
	case AssertExecutionCount:
		return assertExecutionCount(trace, a)
	case AssertSkipped:
		return assertSkipped(trace, a)
	case AssertPushCount:
		return assertPushCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func frameEvent(trace []TraceEvent, frame uint64) (TraceEvent, bool) {
	for _, ev := range trace {
		if ev.Frame == frame {
			return ev, true
		}
	}
	return TraceEvent{}, false
}

// assertExecutedOrder checks that nodes were executed in the given
// relative order within one frame. Other nodes may run in between.
func assertExecutedOrder(trace []TraceEvent, a Assertion) error {
	ev, ok := frameEvent(trace, a.Frame)
	if !ok {
		return &AssertionError{
			Type:     AssertExecutedOrder,
			Expected: fmt.Sprintf("frame %d in trace", a.Frame),
			Actual:   "frame not found",
			Trace:    trace,
		}
	}

	prev := -1
	for _, node := range a.Nodes {
		pos := slices.Index(ev.Executed, node)
		if pos < 0 {
			return &AssertionError{
				Type:     AssertExecutedOrder,
				Expected: fmt.Sprintf("all nodes executed in frame %d: %v", a.Frame, a.Nodes),
				Actual:   fmt.Sprintf("%s not executed", node),
				Trace:    trace,
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     AssertExecutedOrder,
				Expected: fmt.Sprintf("nodes in order: %v", a.Nodes),
				Actual:   fmt.Sprintf("executed: %v", ev.Executed),
				Trace:    trace,
			}
		}
		prev = pos
	}
	return nil
}

// assertExecutionCount checks how often a node was executed across all
// frames.
func assertExecutionCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if slices.Contains(ev.Executed, a.Node) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertExecutionCount,
			Expected: fmt.Sprintf("%s executed %d times", a.Node, a.Count),
			Actual:   fmt.Sprintf("executed %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertSkipped checks that a node was skipped in a frame.
func assertSkipped(trace []TraceEvent, a Assertion) error {
	ev, ok := frameEvent(trace, a.Frame)
	if !ok || !slices.Contains(ev.Skipped, a.Node) {
		return &AssertionError{
			Type:     AssertSkipped,
			Expected: fmt.Sprintf("%s skipped in frame %d", a.Node, a.Frame),
			Actual:   fmt.Sprintf("skipped: %v", ev.Skipped),
			Trace:    trace,
		}
	}
	return nil
}

// assertPushCount checks how many updates pushed values from a binding.
func assertPushCount(trace []TraceEvent, a Assertion) error {
	prefix := a.Node + "."
	count := 0
	for _, ev := range trace {
		if slices.ContainsFunc(ev.Pushed, func(p string) bool { return strings.HasPrefix(p, prefix) }) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertPushCount,
			Expected: fmt.Sprintf("%s pushed in %d updates", a.Node, a.Count),
			Actual:   fmt.Sprintf("pushed in %d updates", count),
			Trace:    trace,
		}
	}
	return nil
}
