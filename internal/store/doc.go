// Package store provides a SQLite-backed triple dataset.
//
// Terms are dictionary-encoded into a terms table; triples reference term
// ids and carry a seq column stamped by a logical clock at insertion.
//
// # Invariants
//
// Deterministic iteration:
//   - Every lookup is ordered by seq ASC, so results come back in
//     insertion order, matching the in-memory dataset
//
// Idempotent loads:
//   - UNIQUE(subject, predicate, object); re-inserting a triple is a no-op
//
// Lazy reads:
//   - Lookups return iterators that issue their query on the first Next
//     and scan one row per call; the connection is released on exhaustion
//     or Close
//
// # Database Configuration
//
// Set per connection through the DSN, since nested lookups hold several
// connections open at once:
//   - WAL mode: concurrent readers alongside the loader
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
