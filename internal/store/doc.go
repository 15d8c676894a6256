// Package store provides SQLite-backed durable storage for logic graphs.
//
// The store keeps two append-only records:
//   - Snapshots: archived graph snapshots, content-addressed per name
//   - Runs: update journals, one canonical JSON report per frame
//
// # Critical Patterns
//
// Content Idempotency
//   - UNIQUE(name, hash) on snapshots
//   - Archiving identical bytes twice returns the first record
//
// Logical Ordering
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Listing is ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Validated Writes
//   - Snapshot bytes are decoded and version-checked before insert
//   - A corrupt snapshot never reaches the archive
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshot hashes come from snapshot.Hash: SHA-256 over canonical JSON
// with domain separation.
package store
