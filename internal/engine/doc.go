// Package engine runs a reactive logic graph.
//
// An Engine owns every logic node, every data array, the link table and
// the dependency graph derived from it. Applications create nodes, link
// output properties to input properties of other nodes, set input values
// and call Update once per frame.
//
// ARCHITECTURE:
//
// Arena of nodes:
// Nodes live in a map keyed by NodeID. Properties carry their owner's
// NodeID instead of a pointer, so ownership stays tree shaped
// (Engine -> LogicNode -> Property) while owner lookup is O(1).
//
// Node kinds:
// A closed set {Script, Animation, Timer, Binding}. Dispatch is one
// exhaustive switch in LogicNode.evaluate. Scripts and sinks are opaque
// interfaces supplied by the application.
//
// Update pass:
//  1. Topological order from the dependency graph (cached until links or
//     nodes change). A cycle aborts the pass before any node is touched.
//  2. Timer nodes are forced dirty.
//  3. Per node, in order: pull linked source values into its inputs, then
//     evaluate it if dirty, then clear the dirty flag.
//
// Values flow only during Update. Link does not copy the source value, and
// Unlink leaves the target value as it was.
//
// Dirty rules:
// A node becomes dirty when one of its input values changes, either by
// Set or by link propagation. Binding and animation inputs dirty their
// node on every write, even with an equal value, so sinks re-push state
// they may never have received.
//
// Errors:
// Every failing call returns an *Error and records it in Errors(). The
// list is cleared at the start of every mutating call. Panics are reserved
// for broken internal invariants.
//
// Persistence:
// Save encodes a canonical snapshot (see package snapshot). Load decodes
// into a fresh state and swaps it in only on success.
package engine
