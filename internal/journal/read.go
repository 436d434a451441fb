package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/solaris/internal/cart"
)

// ErrSessionNotFound is returned when a session id is not in the journal.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is a registered session.
type SessionRecord struct {
	ID          string
	CatalogHash string
	PolicyHash  string
	Actions     int
	LastSeq     int64
}

// ActionRecord is one journaled action.
type ActionRecord struct {
	Seq          int64
	Action       cart.Action
	AutoBundled  bool
	Snapshot     string // canonical JSON
	SnapshotHash string
}

// DecodeSnapshot parses the stored snapshot. Canonical JSON uses the same
// keys as cart.Snapshot's JSON encoding.
func (r ActionRecord) DecodeSnapshot() (cart.Snapshot, error) {
	var snap cart.Snapshot
	if err := json.Unmarshal([]byte(r.Snapshot), &snap); err != nil {
		return cart.Snapshot{}, fmt.Errorf("decode snapshot seq %d: %w", r.Seq, err)
	}
	return snap, nil
}

// ReadSession returns a session with its action count and last seq.
// Returns ErrSessionNotFound if the id is unknown.
func (j *Journal) ReadSession(ctx context.Context, id string) (SessionRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT s.id, s.catalog_hash, s.policy_hash,
		       COUNT(a.id), COALESCE(MAX(a.seq), 0)
		FROM sessions s
		LEFT JOIN actions a ON a.session_id = s.id
		WHERE s.id = ?
		GROUP BY s.id
	`, id)

	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("read session %q: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("read session %q: %w", id, err)
	}
	return rec, nil
}

// ListSessions returns every session ordered by id. Session ids are
// UUIDv7 by default, so this is also start order.
func (j *Journal) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.catalog_hash, s.policy_hash,
		       COUNT(a.id), COALESCE(MAX(a.seq), 0)
		FROM sessions s
		LEFT JOIN actions a ON a.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// ReadActions returns a session's actions ordered by seq ASC.
// Returns an empty slice (not nil) if the session has none.
func (j *Journal) ReadActions(ctx context.Context, sessionID string) ([]ActionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, item_id, auto_bundled, snapshot, snapshot_hash
		FROM actions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	actions := []ActionRecord{}
	for rows.Next() {
		var (
			rec  ActionRecord
			kind string
		)
		if err := rows.Scan(
			&rec.Seq, &kind, &rec.Action.ItemID, &rec.AutoBundled, &rec.Snapshot, &rec.SnapshotHash,
		); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Action.Kind = cart.Kind(kind)
		actions = append(actions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}

	return actions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var rec SessionRecord
	err := row.Scan(&rec.ID, &rec.CatalogHash, &rec.PolicyHash, &rec.Actions, &rec.LastSeq)
	return rec, err
}
