// Package compiler turns CUE graph declarations into engine graphs.
//
// A declaration directory holds one CUE package with four top-level
// fields:
//
//	arrays: [Name=string]: {type: "float", data: [0, 1, 2]}
//	nodes: [Name=string]: {
//		kind:      "script" | "animation" | "timer" | "binding"
//		script?:   string             // registry name (script nodes)
//		sink?:     string             // registry name (binding nodes)
//		inputs?:   {...}              // property decls
//		outputs?:  {...}              // property decls (script nodes)
//		channels?: [...#Channel]      // animation nodes
//	}
//	links: [...{from: "node.path", to: "node.path"}]
//	inputs: [...{node: string, property: string, value: _}]
//
// A property decl is a type name ("float", "vec3i", ...), a struct of
// decls, or {array: <decl>, size: n}.
//
// # Pipeline
//
//  1. LoadDir / CompileValue: CUE -> *Graph (declaration order kept)
//  2. Validate: references, paths, link types, static cycles
//  3. Build: instantiate the graph in an engine through a Registry
//
// Node creation follows declaration order, so the engine's creation
// sequence (and with it the tie-break order of independent nodes) matches
// the file.
package compiler
