package journal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/solaris/internal/canonical"
	"github.com/roach88/solaris/internal/cart"
)

// ErrSessionExists is returned by BeginSession when the id is already
// registered. A session's clock restarts at seq 1, so an id is never
// reopened.
var ErrSessionExists = errors.New("session already exists")

// BeginSession registers a session and the catalog and pricing policy it
// runs under. It returns ErrSessionExists if the id is taken and leaves the
// stored row untouched.
func (j *Journal) BeginSession(ctx context.Context, sessionID string, engine *cart.Engine) error {
	policyHash, err := PolicyHash(engine.Policy())
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, catalog_hash, policy_hash)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sessionID, engine.Catalog().Hash(), policyHash)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("begin session %q: %w", sessionID, ErrSessionExists)
	}

	j.log.Debug("session registered",
		zap.String("session", sessionID),
		zap.String("catalog_hash", engine.Catalog().Hash()))
	return nil
}

// Record implements cart.Recorder. The session must have been registered
// with BeginSession (foreign key constraint). Writing the same seq twice is
// an error: a session's clock never repeats.
func (j *Journal) Record(ctx context.Context, e cart.Entry) error {
	snapshotJSON, err := canonical.Marshal(e.Snapshot)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	hash := canonical.HashBytes(canonical.DomainSnapshot, snapshotJSON)

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO actions
		(session_id, seq, kind, item_id, auto_bundled, snapshot, snapshot_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.SessionID,
		e.Seq,
		string(e.Action.Kind),
		e.Action.ItemID,
		e.Snapshot.AutoBundled,
		string(snapshotJSON),
		hash,
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}

	j.log.Debug("action recorded",
		zap.String("session", e.SessionID),
		zap.Int64("seq", e.Seq),
		zap.String("action", e.Action.String()),
		zap.String("snapshot_hash", hash))
	return nil
}

// PolicyHash identifies a pricing policy.
func PolicyHash(p cart.Policy) (string, error) {
	return canonical.Hash(canonical.DomainPolicy, p)
}
