package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/journal"
)

// sessionFlags are shared by the commands that drive a cart session.
type sessionFlags struct {
	Database  string
	SessionID string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Database, "db", "", "journal actions to this SQLite database")
	cmd.Flags().StringVar(&f.SessionID, "session", "", "new session id (default: generated UUIDv7)")
}

// openSession starts a cart session, journaled when a database is
// configured. A session id already in the journal is refused before any
// action runs. The returned close func releases the journal.
func openSession(ctx context.Context, opts *RootOptions, flags *sessionFlags) (*cart.Session, func() error, error) {
	engine, err := opts.engine()
	if err != nil {
		return nil, nil, err
	}

	log := opts.logger()
	sessOpts := []cart.Option{cart.WithLogger(log)}
	if flags.SessionID != "" {
		sessOpts = append(sessOpts, cart.WithID(flags.SessionID))
	}

	path := opts.journalPath(flags.Database)
	if path == "" {
		return cart.NewSession(engine, sessOpts...), func() error { return nil }, nil
	}

	j, err := journal.Open(path, log)
	if err != nil {
		return nil, nil, codedExitError(ExitCommandError, CodeJournal, "failed to open journal", err)
	}
	sess := cart.NewSession(engine, append(sessOpts, cart.WithRecorder(j))...)
	if err := j.BeginSession(ctx, sess.ID(), engine); err != nil {
		_ = j.Close()
		msg := "failed to register session"
		if errors.Is(err, journal.ErrSessionExists) {
			msg = "session id already journaled, pick another --session"
		}
		return nil, nil, codedExitError(ExitCommandError, CodeJournal, msg, err)
	}

	closeFn := func() error {
		if err := j.Close(); err != nil {
			return codedExitError(ExitCommandError, CodeJournal, "failed to close journal", err)
		}
		return nil
	}
	return sess, closeFn, nil
}

// closeInto runs closeFn and joins its error into *errp.
func closeInto(errp *error, closeFn func() error) {
	if err := closeFn(); err != nil {
		*errp = errors.Join(*errp, err)
	}
}
