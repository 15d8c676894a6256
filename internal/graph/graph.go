package graph

import (
	"slices"

	"github.com/roach88/logicgraph/internal/property"
)

// NodeID is the vertex identifier.
type NodeID = property.NodeID

// Graph is a directed graph with edge multiplicity and a cached
// topological order.
type Graph struct {
	seq     map[NodeID]uint64
	nextSeq uint64
	out     map[NodeID]map[NodeID]int
	in      map[NodeID]map[NodeID]int

	cache []NodeID
	valid bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		seq: make(map[NodeID]uint64),
		out: make(map[NodeID]map[NodeID]int),
		in:  make(map[NodeID]map[NodeID]int),
	}
}

// AddNode inserts a vertex. Adding an existing vertex is a no-op.
func (g *Graph) AddNode(id NodeID) {
	if _, ok := g.seq[id]; ok {
		return
	}
	g.nextSeq++
	g.seq[id] = g.nextSeq
	g.out[id] = make(map[NodeID]int)
	g.in[id] = make(map[NodeID]int)
	g.valid = false
}

// RemoveNode deletes a vertex and all incident edges. A valid cached order
// stays valid with the vertex dropped, so it is kept.
func (g *Graph) RemoveNode(id NodeID) {
	if _, ok := g.seq[id]; !ok {
		return
	}
	for to := range g.out[id] {
		delete(g.in[to], id)
	}
	for from := range g.in[id] {
		delete(g.out[from], id)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.seq, id)
	if g.valid {
		if i := slices.Index(g.cache, id); i >= 0 {
			g.cache = slices.Delete(g.cache, i, i+1)
		}
	}
}

// HasNode reports whether id is a vertex.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.seq[id]
	return ok
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.seq) }

// AddEdge increments the multiplicity of from -> to. It reports whether
// the edge is new. Both vertices must exist.
func (g *Graph) AddEdge(from, to NodeID) bool {
	if !g.HasNode(from) || !g.HasNode(to) {
		panic("graph: edge between unknown vertices")
	}
	g.out[from][to]++
	g.in[to][from]++
	if g.out[from][to] == 1 {
		g.valid = false
		return true
	}
	return false
}

// RemoveEdge decrements the multiplicity of from -> to. It reports whether
// the edge disappeared.
func (g *Graph) RemoveEdge(from, to NodeID) bool {
	n, ok := g.out[from][to]
	if !ok {
		return false
	}
	if n > 1 {
		g.out[from][to] = n - 1
		g.in[to][from] = n - 1
		return false
	}
	delete(g.out[from], to)
	delete(g.in[to], from)
	g.valid = false
	return true
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	return g.out[from][to] > 0
}

// Multiplicity returns how many links induce from -> to.
func (g *Graph) Multiplicity(from, to NodeID) int {
	return g.out[from][to]
}

// Successors returns the direct successors of id in insertion order.
func (g *Graph) Successors(id NodeID) []NodeID {
	return g.sortBySeq(g.out[id])
}

// Predecessors returns the direct predecessors of id in insertion order.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return g.sortBySeq(g.in[id])
}

// Nodes returns every vertex in insertion order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, len(g.seq))
	for id := range g.seq {
		out = append(out, id)
	}
	slices.SortFunc(out, g.bySeq)
	return out
}

// Invalidate drops the cached order.
func (g *Graph) Invalidate() { g.valid = false }

// Cached reports whether a valid order is cached.
func (g *Graph) Cached() bool { return g.valid }

func (g *Graph) bySeq(a, b NodeID) int {
	sa, sb := g.seq[a], g.seq[b]
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func (g *Graph) sortBySeq(set map[NodeID]int) []NodeID {
	out := make([]NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, g.bySeq)
	return out
}
