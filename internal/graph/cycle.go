package graph

import (
	"fmt"
	"slices"
	"strings"
)

// CycleError reports that the graph has no topological order.
type CycleError struct {
	// Cycles holds one closed path per strongly connected component,
	// e.g. [1 2 1].
	Cycles [][]NodeID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		ids := make([]string, len(c))
		for j, id := range c {
			ids[j] = fmt.Sprintf("%d", id)
		}
		parts[i] = strings.Join(ids, " -> ")
	}
	return fmt.Sprintf("graph has cycle: %s", strings.Join(parts, "; "))
}

// Cycles returns one closed path for every strongly connected component
// with more than one vertex. Self loops cannot occur because links between
// properties of the same node are rejected. An acyclic graph returns nil.
func (g *Graph) Cycles() [][]NodeID {
	var cycles [][]NodeID
	for _, scc := range g.tarjanSCC() {
		if len(scc) > 1 {
			cycles = append(cycles, g.reconstructCyclePath(scc))
		}
	}
	return cycles
}

// tarjanSCC finds strongly connected components. Vertices are visited in
// insertion order so results are deterministic.
func (g *Graph) tarjanSCC() [][]NodeID {
	var (
		index   = 0
		stack   []NodeID
		indices = make(map[NodeID]int)
		lowlink = make(map[NodeID]int)
		onStack = make(map[NodeID]bool)
		sccs    [][]NodeID
	)

	var strongConnect func(NodeID)
	strongConnect = func(v NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(scc, g.bySeq)
			sccs = append(sccs, scc)
		}
	}

	for _, v := range g.Nodes() {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside the component from its first
// vertex until it returns there.
func (g *Graph) reconstructCyclePath(scc []NodeID) []NodeID {
	members := make(map[NodeID]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := scc[0]
	path := []NodeID{start}
	visited := map[NodeID]bool{start: true}
	current := start
	for {
		next, found := NodeID(0), false
		// prefer closing the cycle, then the earliest unvisited member
		for _, w := range g.Successors(current) {
			if w == start && len(path) > 1 {
				next, found = w, true
				break
			}
		}
		if !found {
			for _, w := range g.Successors(current) {
				if members[w] && !visited[w] {
					next, found = w, true
					break
				}
			}
		}
		if !found {
			// dead end inside the component: close via start
			return append(path, start)
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
