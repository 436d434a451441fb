package harness

import "github.com/roach88/solaris/internal/cart"

// TraceEvent is one executed step.
type TraceEvent struct {
	Seq      int64         `json:"seq"`
	Action   string        `json:"action"`
	Bundled  bool          `json:"bundled"`
	Snapshot cart.Snapshot `json:"snapshot"`
}

// CanonicalValue implements canonical.Valuer.
func (e TraceEvent) CanonicalValue() any {
	return map[string]any{
		"seq":      e.Seq,
		"action":   e.Action,
		"bundled":  e.Bundled,
		"snapshot": e.Snapshot,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// SessionID is the id the scenario ran under.
	SessionID string `json:"session_id"`

	// Trace holds every step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(sessionID string) *Result {
	return &Result{
		Pass:      true,
		SessionID: sessionID,
		Trace:     []TraceEvent{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Final is the snapshot after the last step.
func (r *Result) Final() cart.Snapshot {
	if len(r.Trace) == 0 {
		return cart.Snapshot{Items: []cart.ItemView{}}
	}
	return r.Trace[len(r.Trace)-1].Snapshot
}
