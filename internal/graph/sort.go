package graph

import "slices"

// Sorted returns a topological order of all vertices. The result is cached
// and the same slice contents are returned until the graph changes. The
// returned slice is a copy.
func (g *Graph) Sorted() ([]NodeID, error) {
	if !g.valid {
		order, ok := g.kahn()
		if !ok {
			return nil, &CycleError{Cycles: g.Cycles()}
		}
		g.cache = order
		g.valid = true
	}
	return slices.Clone(g.cache), nil
}

func (g *Graph) kahn() ([]NodeID, bool) {
	indegree := make(map[NodeID]int, len(g.seq))
	for id := range g.seq {
		indegree[id] = len(g.in[id])
	}

	var ready []NodeID
	for _, id := range g.Nodes() {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]NodeID, 0, len(g.seq))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range g.Successors(id) {
			indegree[next]--
			if indegree[next] == 0 {
				// keep the ready set ordered by insertion sequence
				i, _ := slices.BinarySearchFunc(ready, next, g.bySeq)
				ready = slices.Insert(ready, i, next)
			}
		}
	}
	return order, len(order) == len(g.seq)
}
