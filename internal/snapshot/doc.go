// Package snapshot defines the persisted form of a logic graph.
//
// A Snapshot records every node with its stable id, kind tag, name and
// full property trees, every DataArray, and every link as a pair of
// (node id, child-index path) endpoints. Child-index paths are stable for
// a given declaration, so links can be resolved back into live property
// references after the trees have been rebuilt.
//
// Encoding is RFC 8785 canonical JSON:
//   - object keys sorted by UTF-16 code units
//   - strings NFC normalized, no HTML escaping
//   - no floats and no null
//
// Float values are stored as their IEEE-754 bit patterns, so a round trip
// is bit exact and the canonical form never needs a float encoding.
// Identical graphs therefore produce identical bytes and identical hashes.
//
// Every snapshot carries a format version and the producing engine
// version. Decode refuses snapshots whose major version differs from the
// running code.
package snapshot
