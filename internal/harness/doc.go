// Package harness runs engine scenarios from YAML files.
//
// A scenario names a CUE graph directory, drives the engine through a
// list of steps and asserts over the resulting update trace.
//
// # Scenario Format
//
//	name: chain_propagation
//	description: "Values flow along links in topological order"
//	graph: graphs/chain
//	timer_clock_step_us: 1000
//	steps:
//	  - update: {}
//	  - set: {node: source, property: x, value: 5}
//	  - update: {count: 2}
//	  - expect: {node: total, property: sum, value: 15}
//	  - link: {from: a.y, to: b.x, expect_error: LINK_ERROR}
//	  - checkpoint: {name: main}
//	  - restore: {name: main}
//	assertions:
//	  - type: executed_order
//	    frame: 1
//	    nodes: [source, double, total]
//	  - type: skipped
//	    frame: 3
//	    node: source
//
// Unknown fields are rejected so typos fail loudly.
//
// # Assertion Types
//
//   - executed_order: nodes ran in this relative order within a frame
//   - execution_count: a node ran exactly N times over the run
//   - skipped: a node was skipped in a frame
//   - push_count: a binding pushed values in exactly N updates
//
// # Deterministic Testing
//
// The harness uses:
//   - A deterministic timer clock (testutil.DeterministicClock)
//   - Sequential store ids (testutil.SequenceGenerator)
//   - A fresh in-memory SQLite store per run, journaling every update
//
// Every update appends a TraceEvent with executed and skipped nodes,
// values pushed to bindings and all output values, so traces compare
// byte for byte against golden files (see RunWithGolden).
package harness
