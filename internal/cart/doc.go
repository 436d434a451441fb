// Package cart implements the Solaris cart normalization and pricing engine.
//
// The engine is a set of pure functions over State. Every mutation (add,
// remove, increment, decrement) edits raw per-item quantities and then
// runs Normalize, which:
//  1. reads the primary, secondary and bundle quantities
//  2. converts min(primary, secondary) matched pairs into bundle units
//  3. rebuilds the line items in catalog order, dropping zero quantities
//  4. reports whether a pair conversion happened
//
// Normalize is idempotent, and after any sequence of operations
// min(primary, secondary) == 0.
//
// Totals are derived from a State on demand and never stored. Money is
// accumulated exactly and only rounded to cents in a Snapshot.
//
// Session owns one cart for one consumer. It carries the auto-bundled
// flag (raised by any mutation whose normalization converted a pair,
// lowered only by ClearAutoBundled), stamps each action with a logical
// sequence number, and notifies Recorders. A Session is not safe for
// concurrent use; drive it from one goroutine.
package cart
