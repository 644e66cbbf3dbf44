package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count <store>",
		Short:         "Print the number of records in a store",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				n, err := db.Count(ctx, args[0])
				if err != nil {
					return fail(f, "count failed", err)
				}
				return f.Success(n)
			})
		},
	}
}

// NewLastCommand creates the last command.
func NewLastCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "last <store>",
		Short: "Print the greatest key in a store",
		Long: `Print the greatest key in key order (numbers before strings).
An empty store prints null.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				key, err := db.Last(ctx, args[0])
				if err != nil {
					return fail(f, "last failed", err)
				}
				return f.Success(key)
			})
		},
	}
}

func formatCount(store string, n int) string {
	return fmt.Sprintf("%s: %d", store, n)
}
