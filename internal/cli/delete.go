package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Where string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <store>",
		Short: "Delete one record by key or id",
		Long: `Delete the record identified by key or id in --where.

Example:
  kvq delete users --where '{"id":1}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				return runDelete(ctx, opts, db, f, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "identity as JSON, e.g. {\"id\":1}")

	return cmd
}

func runDelete(ctx context.Context, opts *DeleteOptions, db *facade.DB, f *OutputFormatter, on string) error {
	where, err := parseWhere(f, opts.Where)
	if err != nil {
		return err
	}
	if err := db.Delete(ctx, facade.DeleteQuery{On: on, Where: where}); err != nil {
		return fail(f, "delete failed", err)
	}
	if f.Format == "json" {
		return f.Success(map[string]bool{"deleted": true})
	}
	f.VerboseLog("deleted")
	return nil
}
