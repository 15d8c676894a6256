// Package links records directed edges from primitive output properties to
// primitive input properties.
//
// Invariants maintained on every mutation:
//   - a target has at most one incoming link
//   - a source may feed any number of targets
//   - source and target belong to different nodes
//   - both endpoints are primitive and of the same type
//
// The table holds non-owning references. The engine must call UnlinkAll
// before it releases a node's property trees.
package links
