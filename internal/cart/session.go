package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Entry is one accepted action and the state it produced.
type Entry struct {
	SessionID string
	Seq       int64
	Action    Action
	Bundled   bool // this action converted at least one pair
	Snapshot  Snapshot
}

// Recorder observes every action a Session accepts, after the cart has
// been updated. The journal is a Recorder.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Entry) error

func (f RecorderFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }

// Session is one consumer's cart.
type Session struct {
	id          string
	engine      *Engine
	state       State
	autoBundled bool
	clock       *Clock
	recorders   []Recorder
	log         *zap.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	id        string
	ids       IDGenerator
	log       *zap.Logger
	recorders []Recorder
}

// WithID fixes the session id.
func WithID(id string) Option {
	return func(c *sessionConfig) { c.id = id }
}

// WithIDGenerator sets where the session id comes from when WithID is not
// given. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *sessionConfig) { c.ids = g }
}

// WithLogger sets the session logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *sessionConfig) { c.log = log }
}

// WithRecorder adds a Recorder. Recorders run in the order added.
func WithRecorder(r Recorder) Option {
	return func(c *sessionConfig) { c.recorders = append(c.recorders, r) }
}

// NewSession starts an empty cart.
func NewSession(engine *Engine, opts ...Option) *Session {
	cfg := sessionConfig{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = cfg.ids.Generate()
	}
	if cfg.log == nil {
		cfg.log = zap.NewNop()
	}

	return &Session{
		id:        cfg.id,
		engine:    engine,
		clock:     NewClock(),
		recorders: cfg.recorders,
		log:       cfg.log.With(zap.String("session", cfg.id)),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Engine returns the engine the session prices with.
func (s *Session) Engine() *Engine { return s.engine }

// State returns the current cart.
func (s *Session) State() State { return s.state }

// Items returns the current lines.
func (s *Session) Items() []LineItem { return s.state.Items() }

// Totals prices the current cart.
func (s *Session) Totals() Totals { return s.engine.Totals(s.state) }

// AutoBundled reports whether a pair has been converted into a bundle
// since the flag was last cleared.
func (s *Session) AutoBundled() bool { return s.autoBundled }

// Seq is the sequence number of the last accepted action.
func (s *Session) Seq() int64 { return s.clock.Current() }

// Snapshot renders the current output state.
func (s *Session) Snapshot() Snapshot {
	return s.engine.Snapshot(s.state, s.autoBundled)
}

// Apply runs one action to completion, normalization and pricing
// included, then notifies recorders. The cart is updated even if a
// recorder fails; the returned error only reports recording failures.
func (s *Session) Apply(ctx context.Context, a Action) (Snapshot, error) {
	seq := s.clock.Next()

	var bundled bool
	if a.Kind == KindClear {
		s.autoBundled = false
	} else {
		var next State
		next, bundled = s.engine.Apply(s.state, a)
		s.state = next
		if bundled {
			s.autoBundled = true
			s.log.Info("bundle applied",
				zap.Int64("seq", seq),
				zap.Int("bundles", next.Quantity(s.engine.catalog.Bundle().ID)))
		}
	}

	snap := s.Snapshot()
	s.log.Debug("action applied",
		zap.Int64("seq", seq),
		zap.String("action", string(a.Kind)),
		zap.String("item", a.ItemID),
		zap.Int("units", snap.Units),
		zap.String("total", snap.Totals.Total),
		zap.Bool("auto_bundled", snap.AutoBundled))

	entry := Entry{SessionID: s.id, Seq: seq, Action: a, Bundled: bundled, Snapshot: snap}
	var errs []error
	for _, r := range s.recorders {
		if err := r.Record(ctx, entry); err != nil {
			s.log.Error("record action", zap.Int64("seq", seq), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return snap, fmt.Errorf("record seq %d: %w", seq, errors.Join(errs...))
	}
	return snap, nil
}

// ApplyAll applies actions in order and returns the final snapshot.
func (s *Session) ApplyAll(ctx context.Context, actions []Action) (Snapshot, error) {
	snap := s.Snapshot()
	for _, a := range actions {
		var err error
		if snap, err = s.Apply(ctx, a); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// Add puts one unit of id in the cart.
func (s *Session) Add(ctx context.Context, id string) (Snapshot, error) {
	return s.Apply(ctx, Action{Kind: KindAdd, ItemID: id})
}

// Remove deletes the line for id.
func (s *Session) Remove(ctx context.Context, id string) (Snapshot, error) {
	return s.Apply(ctx, Action{Kind: KindRemove, ItemID: id})
}

// Increment adds one unit to an existing line.
func (s *Session) Increment(ctx context.Context, id string) (Snapshot, error) {
	return s.Apply(ctx, Action{Kind: KindIncrement, ItemID: id})
}

// Decrement removes one unit from an existing line.
func (s *Session) Decrement(ctx context.Context, id string) (Snapshot, error) {
	return s.Apply(ctx, Action{Kind: KindDecrement, ItemID: id})
}

// ClearAutoBundled dismisses the bundle notice. It always wins: the flag
// is false afterwards whatever came before.
func (s *Session) ClearAutoBundled(ctx context.Context) (Snapshot, error) {
	return s.Apply(ctx, Action{Kind: KindClear})
}
