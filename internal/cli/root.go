package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/kvquery/internal/asyncseq"
)

// EnvPrefix is the prefix of environment variables read as flag fallbacks
// (KVQ_DB, KVQ_SCHEMA, KVQ_FORMAT, ...).
const EnvPrefix = "KVQ"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DBPath   string
	Schema   string
	Interval time.Duration

	// Logger receives operation logs on stderr. Set by the root command
	// before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kvq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "kvq",
		Short: "kvq - query a key-value object store",
		Long: `Query and modify a SQLite-backed object store with JSON filters.

The database layout (stores, indexes, seed data) is read from a CUE or YAML
schema. A fresh database is created and seeded on first use.

Flags fall back to KVQ_* environment variables, e.g. KVQ_DB and KVQ_SCHEMA.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}
			opts.DBPath = v.GetString("db")
			opts.Schema = v.GetString("schema")
			opts.Format = v.GetString("format")
			opts.Verbose = v.GetBool("verbose")
			opts.Interval = v.GetDuration("interval")

			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (env KVQ_DB)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "path to CUE or YAML schema (env KVQ_SCHEMA)")
	cmd.PersistentFlags().DurationVar(&opts.Interval, "interval", asyncseq.DefaultInterval, "pause between filtered records")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewLastCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newFormatter builds the output formatter for a command run.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
