// Package graph derives node execution order from node-to-node
// dependencies.
//
// Vertices are logic node ids. An edge A -> B exists while at least one
// output of A is linked into an input of B; edges carry a multiplicity so
// that removing one of several parallel links keeps the edge.
//
// Sorting is Kahn's algorithm with the ready set ordered by insertion
// sequence. Nodes without edges therefore keep their creation order, and
// re-sorting an unchanged graph always yields the same order. The order is
// cached until the edge set or the vertex set changes.
//
// A cyclic graph has no order. Sorted reports a *CycleError that names
// each strongly connected component (Tarjan).
package graph
