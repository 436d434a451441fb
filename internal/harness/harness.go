package harness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/catalog"
	"github.com/roach88/solaris/internal/journal"
)

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation.
//
// Execution flow:
//  1. Load the catalog (built-in or the scenario's override)
//  2. Register the session in the journal
//  3. Apply each flow step, checking its expect clause
//  4. Evaluate assertions against the trace
//  5. Replay the journal and check it reproduces every snapshot
//
// The returned error reports harness failures (bad catalog, journal
// errors). Scenario failures are recorded in Result.Errors.
func RunContext(ctx context.Context, scenario *Scenario, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scenario", scenario.Name))

	cat := catalog.Default()
	if scenario.Catalog != "" {
		var err error
		if cat, err = catalog.Load(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	engine := cart.NewEngine(cat, cart.DefaultPolicy())

	j, err := journal.Open(":memory:", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = "scenario-" + scenario.Name
	}
	if err := j.BeginSession(ctx, sessionID, engine); err != nil {
		return nil, err
	}

	result := NewResult(sessionID)
	tracer := cart.RecorderFunc(func(_ context.Context, e cart.Entry) error {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:      e.Seq,
			Action:   e.Action.String(),
			Bundled:  e.Bundled,
			Snapshot: e.Snapshot,
		})
		return nil
	})
	session := cart.NewSession(engine,
		cart.WithID(sessionID),
		cart.WithLogger(log),
		cart.WithRecorder(j),
		cart.WithRecorder(tracer),
	)

	for i, step := range scenario.Flow {
		a, err := cart.ParseAction(step.Do)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		if _, err := session.Apply(ctx, a); err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}

		if step.Expect == nil {
			continue
		}
		event := result.Trace[len(result.Trace)-1]
		for _, msg := range checkExpect(step.Expect, event) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, event.Action, msg))
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, cat) {
		result.AddError(msg)
	}

	if _, err := j.Replay(ctx, engine, sessionID); err != nil {
		var div *journal.DivergenceError
		if !errors.As(err, &div) {
			return nil, fmt.Errorf("failed to replay: %w", err)
		}
		result.AddError(fmt.Sprintf("replay: %v", div))
	}

	log.Debug("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("steps", len(result.Trace)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}
