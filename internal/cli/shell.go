package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/solaris/internal/cart"
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	sessionFlags
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Drive one cart session from stdin",
		Long: `Read actions from stdin, one per line, and print the cart after each.

Besides actions, "show" prints the cart and "quit" or "exit" ends the
session. Blank lines and lines starting with # are skipped. An invalid
line is reported and the session continues.

Examples:
  solaris shell
  printf 'add sg1\nadd ln1\n' | solaris shell --format json
  solaris shell --db ./cart.db --session demo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts, cmd)
		},
	}
	opts.sessionFlags.register(cmd)

	return cmd
}

func runShell(opts *ShellOptions, cmd *cobra.Command) (err error) {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	ctx := cmd.Context()
	sess, closeFn, err := openSession(ctx, opts.RootOptions, &opts.sessionFlags)
	if err != nil {
		return out.Fail(err)
	}
	defer closeInto(&err, closeFn)

	saving := sess.Engine().Catalog().BundleSaving()
	show := func(snap cart.Snapshot) error {
		if opts.Format == "json" {
			return out.Encode(CLIResponse{Status: "ok", Data: snap, SessionID: sess.ID()})
		}
		renderSnapshot(out.Writer, snap, saving)
		fmt.Fprintln(out.Writer)
		return nil
	}

	if opts.Format == "text" {
		fmt.Fprintf(out.Writer, "Session %s\n", sess.ID())
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "show":
			if err := show(sess.Snapshot()); err != nil {
				return err
			}
			continue
		}

		action, err := cart.ParseAction(line)
		if err != nil {
			if err := out.Error(CodeInvalidAction, err.Error(), nil); err != nil {
				return err
			}
			continue
		}

		snap, err := sess.Apply(ctx, action)
		if err != nil {
			_ = out.Error(CodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal action", err)
		}
		if err := show(snap); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}
