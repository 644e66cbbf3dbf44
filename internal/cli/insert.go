package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/value"
)

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <store> <json>",
		Short: "Add one record or an array of records",
		Long: `Add records to a store. An object adds one record; an array adds each
element. Adding an existing key fails. Prints the keys written.

Example:
  kvq insert users '{"id":3,"name":"Eve","age":40}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				return runInsert(ctx, db, f, args[0], args[1])
			})
		},
	}
	return cmd
}

func runInsert(ctx context.Context, db *facade.DB, f *OutputFormatter, on, raw string) error {
	set, err := value.Decode([]byte(raw))
	if err != nil {
		return failCode(f, ErrCodeInvalidFlag, "invalid record JSON", err)
	}

	keys, err := db.Insert(ctx, facade.InsertQuery{On: on, Set: set})
	if err != nil {
		return fail(f, "insert failed", err)
	}
	return f.Values(keys)
}
