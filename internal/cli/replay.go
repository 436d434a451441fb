package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string `json:"session_id"`
	Actions       int    `json:"actions"`
	Deterministic bool   `json:"deterministic"`
	Total         string `json:"total,omitempty"`
	Error         string `json:"error,omitempty"`
	DivergedAt    int64  `json:"diverged_at,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Replay journaled sessions and verify their snapshots",
		Long: `Replay journaled sessions against the current catalog and pricing and
check that every action reproduces its recorded snapshot hash.

Without a session id every session in the journal is replayed. A session
recorded under a different catalog or pricing policy is reported as a
mismatch and not replayed.

Exit codes:
  0 - All sessions reproduced
  1 - A session diverged or was recorded under a different catalog/policy
  2 - Command error (database not found, unknown session, etc.)

Examples:
  solaris replay --db ./cart.db
  solaris replay --db ./cart.db demo
  solaris replay --db ./cart.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) == 1 {
				sessionID = args[0]
			}
			return runReplay(opts, sessionID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite journal (default: $SOLARIS_JOURNAL_DB)")

	return cmd
}

func runReplay(opts *ReplayOptions, sessionID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	path := opts.journalPath(opts.Database)
	if path == "" {
		return NewExitError(ExitCommandError, "journal database required (--db or SOLARIS_JOURNAL_DB)")
	}

	engine, err := opts.engine()
	if err != nil {
		return out.Fail(err)
	}

	j, err := journal.Open(path, opts.logger())
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var ids []string
	if sessionID != "" {
		if _, err := j.ReadSession(ctx, sessionID); err != nil {
			_ = out.Error(CodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		ids = []string{sessionID}
	} else {
		sessions, err := j.ListSessions(ctx)
		if err != nil {
			_ = out.Error(CodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions:    len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		r := replaySession(cmd, j, engine, opts.logger(), id)
		if !r.Deterministic {
			result.AllDeterministic = false
		}
		result.Sessions = append(result.Sessions, r)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.AllDeterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: CodeDiverged, Message: "replay did not reproduce every session"}
		}
		if err := out.Encode(resp); err != nil {
			return err
		}
	} else {
		_ = out.Success(result, func(w io.Writer) { printReplayText(w, result) })
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay did not reproduce every session")
	}
	return nil
}

func replaySession(cmd *cobra.Command, j *journal.Journal, engine *cart.Engine, log *zap.Logger, id string) ReplaySessionResult {
	res, err := j.Replay(cmd.Context(), engine, id)
	if err == nil {
		return ReplaySessionResult{
			SessionID:     id,
			Actions:       res.Actions,
			Deterministic: true,
			Total:         res.Final.Totals.Total,
		}
	}

	log.Warn("replay failed", zap.String("session", id), zap.Error(err))
	r := ReplaySessionResult{SessionID: id, Error: err.Error()}
	var div *journal.DivergenceError
	if errors.As(err, &div) {
		r.DivergedAt = div.Seq
	}
	return r
}

func printReplayText(w io.Writer, result ReplayResult) {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions in journal.")
		return
	}
	for _, s := range result.Sessions {
		if s.Deterministic {
			fmt.Fprintf(w, "✓ %s (%d actions, total %s)\n", s.SessionID, s.Actions, s.Total)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n  %s\n", s.SessionID, s.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replayed %d session(s)\n", result.TotalSessions)
}
