// Package journal keeps an append-only SQLite audit trail of cart sessions.
//
// Every action a cart.Session accepts is written with its logical sequence
// number and the canonical JSON of the snapshot it produced. The journal
// never restores a cart; it exists so a session can be replayed against the
// current engine and checked snapshot by snapshot.
//
// # Ordering
//
// All reads order by seq ASC. Sequence numbers come from the session's
// logical clock, so replay is independent of wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
