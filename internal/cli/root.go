package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/catalog"
	"github.com/roach88/solaris/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Catalog   string // CUE catalog file; empty means the built-in catalog
	JournalDB string // default --db for journaled commands

	log *zap.Logger
}

// NewRootCommand creates the root command for the solaris CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "solaris",
		Short: "Solaris storefront cart engine",
		Long: `Cart normalization and pricing for the Solaris storefront.

Sunglasses and lenses in the same cart are converted into bundles, and
every action yields a priced snapshot. Sessions can be journaled to
SQLite and replayed to prove they still price the same.

Environment:
  SOLARIS_FORMAT       default for --format
  SOLARIS_LOG_LEVEL    log level (debug, info, warn, error)
  SOLARIS_CATALOG      default for --catalog
  SOLARIS_JOURNAL_DB   default for --db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger().Sync()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file (default: built-in)")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewQuoteCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// setup merges the flags over the environment, validates the result and
// builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Parse()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.Format
	}
	if flags.Changed("catalog") {
		cfg.Catalog = o.Catalog
	}
	if o.Verbose {
		cfg.LogLevel = zapcore.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Format = cfg.Format
	o.Catalog = cfg.Catalog
	o.JournalDB = cfg.JournalDB
	o.log = newLogger(cmd, o.Format, level)
	return nil
}

// newLogger writes to the command's stderr so logs never mix with output.
func newLogger(cmd *cobra.Command, format string, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(cmd.ErrOrStderr()), level)
	return zap.New(core).Named("solaris")
}

func (o *RootOptions) logger() *zap.Logger {
	if o.log == nil {
		return zap.NewNop()
	}
	return o.log
}

// engine loads the configured catalog and returns a cart engine with the
// default pricing policy.
func (o *RootOptions) engine() (*cart.Engine, error) {
	cat := catalog.Default()
	if o.Catalog != "" {
		loaded, err := catalog.Load(o.Catalog)
		if err != nil {
			return nil, codedExitError(ExitCommandError, CodeCatalog, "failed to load catalog", err)
		}
		cat = loaded
	}
	return cart.NewEngine(cat, cart.DefaultPolicy()), nil
}

// journalPath returns flagValue, falling back to SOLARIS_JOURNAL_DB.
func (o *RootOptions) journalPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return o.JournalDB
}
