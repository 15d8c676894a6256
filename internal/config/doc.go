// Package config loads runtime configuration for a logic graph process.
//
// Configuration is a versioned YAML document:
//
//	version: 1
//	log:
//	  level: info       # debug | info | warn | error
//	  format: text      # text | json
//	engine:
//	  dirty_tracking: true
//	  update_report: false
//	graph:
//	  dir: graphs/main  # CUE graph declarations
//	store:
//	  path: state.db    # SQLite archive, ":memory:" for a scratch store
//	  snapshot: main    # restore this snapshot on Open when archived
//
// Relative paths resolve against the directory of the config file.
//
// Open turns a Config into a running Runtime: logger, engine, optional
// store and the initial graph (restored snapshot or built declarations).
package config
