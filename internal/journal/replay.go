package journal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/solaris/internal/canonical"
	"github.com/roach88/solaris/internal/cart"
)

var (
	// ErrCatalogMismatch means the session was recorded under a different
	// catalog than the engine replaying it.
	ErrCatalogMismatch = errors.New("catalog mismatch")

	// ErrPolicyMismatch means the session was recorded under different
	// pricing constants.
	ErrPolicyMismatch = errors.New("policy mismatch")
)

// DivergenceError reports the first action whose replayed snapshot differs
// from the recorded one.
type DivergenceError struct {
	SessionID string
	Seq       int64
	Action    cart.Action
	Recorded  string // canonical JSON
	Replayed  string // canonical JSON
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("session %s diverged at seq %d (%s)", e.SessionID, e.Seq, e.Action)
}

// ReplayResult summarizes a successful replay.
type ReplayResult struct {
	SessionID string
	Actions   int
	Final     cart.Snapshot
}

// Replay re-runs a journaled session against engine and checks that every
// action reproduces its recorded snapshot. It refuses to run when the
// catalog or policy differs from the one the session was recorded under.
func (j *Journal) Replay(ctx context.Context, engine *cart.Engine, sessionID string) (ReplayResult, error) {
	rec, err := j.ReadSession(ctx, sessionID)
	if err != nil {
		return ReplayResult{}, err
	}

	if rec.CatalogHash != engine.Catalog().Hash() {
		return ReplayResult{}, fmt.Errorf("replay %s: %w: recorded %s, current %s",
			sessionID, ErrCatalogMismatch, short(rec.CatalogHash), short(engine.Catalog().Hash()))
	}
	policyHash, err := PolicyHash(engine.Policy())
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	if rec.PolicyHash != policyHash {
		return ReplayResult{}, fmt.Errorf("replay %s: %w: recorded %s, current %s",
			sessionID, ErrPolicyMismatch, short(rec.PolicyHash), short(policyHash))
	}

	actions, err := j.ReadActions(ctx, sessionID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", sessionID, err)
	}

	session := cart.NewSession(engine, cart.WithID(sessionID), cart.WithLogger(j.log))
	final := session.Snapshot()
	for _, a := range actions {
		snap, err := session.Apply(ctx, a.Action)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s: %w", sessionID, err)
		}
		if session.Seq() != a.Seq {
			return ReplayResult{}, fmt.Errorf("replay %s: seq gap: recorded %d, replayed %d",
				sessionID, a.Seq, session.Seq())
		}

		replayed, err := canonical.Marshal(snap)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s: %w", sessionID, err)
		}
		if canonical.HashBytes(canonical.DomainSnapshot, replayed) != a.SnapshotHash {
			j.log.Warn("replay diverged",
				zap.String("session", sessionID),
				zap.Int64("seq", a.Seq),
				zap.String("action", a.Action.String()))
			return ReplayResult{}, &DivergenceError{
				SessionID: sessionID,
				Seq:       a.Seq,
				Action:    a.Action,
				Recorded:  a.Snapshot,
				Replayed:  string(replayed),
			}
		}
		final = snap
	}

	j.log.Debug("replay ok", zap.String("session", sessionID), zap.Int("actions", len(actions)))
	return ReplayResult{SessionID: sessionID, Actions: len(actions), Final: final}, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
