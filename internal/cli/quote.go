package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/solaris/internal/cart"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	*RootOptions
	sessionFlags
}

// NewQuoteCommand creates the quote command.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote <action>...",
		Short: "Apply actions to a new cart and print the priced result",
		Long: `Apply a sequence of actions to an empty cart and print the final snapshot.

Actions are written verb:item or "verb item". Verbs: add, remove (rm),
inc (increment), dec (decrement), and clear (dismiss) to hide the
auto-bundle notice.

Exit codes:
  0 - Quote printed
  2 - Command error (invalid action, catalog or journal unavailable)

Examples:
  solaris quote add:sg1 add:ln1
  solaris quote add:sg1 add:ln1 add:sg1 --format json
  solaris quote add:bd1 --db ./cart.db --session demo`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(opts, args, cmd)
		},
	}
	opts.sessionFlags.register(cmd)

	return cmd
}

func runQuote(opts *QuoteOptions, args []string, cmd *cobra.Command) (err error) {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	actions, err := cart.ParseActions(args)
	if err != nil {
		_ = out.Error(CodeInvalidAction, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid action", err)
	}

	ctx := cmd.Context()
	sess, closeFn, err := openSession(ctx, opts.RootOptions, &opts.sessionFlags)
	if err != nil {
		return out.Fail(err)
	}
	defer closeInto(&err, closeFn)

	snap, err := sess.ApplyAll(ctx, actions)
	if err != nil {
		_ = out.Error(CodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to journal session", err)
	}

	if opts.Format == "json" {
		return out.Encode(CLIResponse{Status: "ok", Data: snap, SessionID: sess.ID()})
	}
	saving := sess.Engine().Catalog().BundleSaving()
	return out.Success(snap, func(w io.Writer) {
		renderSnapshot(w, snap, saving)
	})
}
