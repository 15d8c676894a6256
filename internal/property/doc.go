// Package property provides the typed property tree used for every logic
// node's inputs and outputs.
//
// A property is one of three shapes:
//   - primitive: holds exactly one Value whose type never changes
//   - struct: holds named children in declaration order, no value
//   - array: holds unnamed children of one element type, no value
//
// Only primitive properties can carry a value or take part in a link.
//
// Ownership is tree shaped. A property records the NodeID of the node that
// owns it (a handle, never a pointer to the node) so the engine can resolve
// the owner through its arena in O(1).
//
// CRITICAL PATTERNS:
//
// Semantics are fixed at construction. The role (Input or Output) is derived
// from semantics and never changes.
//
// BindingInput and AnimationInput properties report "mark owner dirty" on
// every write, even when the value is unchanged. Plain script inputs only
// do so when the value actually changed.
package property
