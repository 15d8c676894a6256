package engine

import "time"

// Update runs one pass over the graph.
//
// Processing order:
//  1. Sort nodes topologically (cached). A cycle aborts before any node
//     state is touched.
//  2. Force timer nodes dirty.
//  3. For each node in order: copy linked source values into its inputs,
//     evaluate it when dirty (or always with dirty tracking disabled),
//     then clear its dirty flag.
//
// The first evaluation error stops the pass. Nodes evaluated earlier in
// the same pass keep their new state.
func (e *Engine) Update() error {
	e.clearErrors()
	start := time.Now()
	frame := e.frames.Next()

	var rep *UpdateReport
	if e.reporting {
		rep = &UpdateReport{Frame: frame}
		e.report = rep
	}

	order, sortErr := e.sorted()
	if rep != nil {
		rep.TopologySort = time.Since(start)
	}
	if sortErr != nil {
		if rep != nil {
			rep.Total = time.Since(start)
		}
		return e.fail(sortErr)
	}

	for _, n := range order {
		if n.kind == KindTimer {
			n.dirty = true
		}
	}

	for _, n := range order {
		activations := e.pull(n)
		if rep != nil {
			rep.LinkActivations += activations
		}

		if !n.dirty && e.dirtyTracking {
			if rep != nil {
				rep.Skipped = append(rep.Skipped, NodeRef{ID: n.id, Name: n.name})
			}
			continue
		}

		evalStart := time.Now()
		err := n.evaluate()
		if rep != nil {
			rep.Executed = append(rep.Executed, NodeTiming{
				NodeRef:  NodeRef{ID: n.id, Name: n.name},
				Duration: time.Since(evalStart),
			})
		}
		if err != nil {
			if rep != nil {
				rep.Failed = &NodeRef{ID: n.id, Name: n.name}
				rep.Total = time.Since(start)
			}
			return e.fail(newError(ErrCodeRuntime, n, err))
		}
		n.dirty = false
	}

	if rep != nil {
		rep.Total = time.Since(start)
	}
	e.logger.Debug("update complete", "frame", frame, "nodes", len(order))
	return nil
}

// pull copies the value of every linked source into n's inputs and marks
// n dirty when a copy changed a value or hit an always-dirty input. It
// returns the number of links followed.
func (e *Engine) pull(n *LogicNode) int {
	activations := 0
	for _, tgt := range n.inputs.Primitives() {
		if !tgt.IsLinked() {
			continue
		}
		src, ok := e.st.links.Source(tgt)
		if !ok {
			panic("engine: linked input has no source in the link table")
		}
		activations++
		if tgt.Receive(src.Value()) {
			n.dirty = true
		}
	}
	return activations
}
