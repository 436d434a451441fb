// Package harness runs cart scenarios as executable contract tests.
//
// A scenario is a YAML file listing consumer actions, the snapshot each
// step must produce, and assertions over the whole run. The harness drives
// a real cart.Session, journals it to an in-memory SQLite database, replays
// the journal, and records a trace for golden comparison.
//
// # Scenario Format
//
//	name: pair_then_leftover
//	description: "Two sunglasses and one lens leave one pair bundled"
//	catalog: catalogs/override.cue   # optional, relative to the scenario
//	session_id: s-001                # optional, defaults to scenario-<name>
//	flow:
//	  - do: add:sg1
//	  - do: add:sg1
//	  - do: add:ln1
//	    expect:
//	      items: { sg1: 1, bd1: 1 }
//	      auto_bundled: true
//	      totals: { subtotal: "185.00", tax: "15.26" }
//	assertions:
//	  - type: final_totals
//	    totals: { total: "200.26" }
//	  - type: bundle_count
//	    count: 1
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - bundle_count: exactly N steps converted a pair
//   - final_items: the final cart holds exactly these quantities
//   - final_totals: the final totals match (subset)
//   - final_flag: the final auto-bundled flag
//   - invariants: every step holds no matched pair and no empty line
//
// # Deterministic Testing
//
// Session ids are fixed and the logical clock starts at zero, so identical
// scenarios produce byte-identical traces.
package harness
