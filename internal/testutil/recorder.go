// Package testutil holds cart test doubles shared across packages.
package testutil

import (
	"context"
	"sync"

	"github.com/roach88/solaris/internal/cart"
)

// Recorder captures every entry a session commits.
//
// Unlike the journal, Recorder keeps entries in memory and can be reset for
// test reuse. All methods are safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []cart.Entry
	err     error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record implements cart.Recorder. It stores e even when a failure has
// been injected with FailWith.
func (r *Recorder) Record(_ context.Context, e cart.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return r.err
}

// FailWith makes subsequent Record calls return err. A nil err clears it.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Entries returns a copy of the captured entries in commit order.
func (r *Recorder) Entries() []cart.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]cart.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns the most recent entry.
func (r *Recorder) Last() (cart.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return cart.Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Conversions counts entries whose action converted at least one pair.
func (r *Recorder) Conversions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Bundled {
			n++
		}
	}
	return n
}

// Reset drops captured entries and any injected failure.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.err = nil
}
