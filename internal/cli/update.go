package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/value"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Where string
	Set   string
	Merge bool
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <store>",
		Short: "Replace or deep-merge one record",
		Long: `Write one record identified by key or id in --where.

Without --merge the record is replaced by --set. With --merge, --set is
deep-merged into the stored record: primitives are replaced, arrays are
concatenated and objects are merged recursively.

Example:
  kvq update users --where '{"id":1}' --set '{"age":31}' --merge`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				return runUpdate(ctx, opts, db, f, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "identity as JSON, e.g. {\"id\":1}")
	cmd.Flags().StringVar(&opts.Set, "set", "", "record or patch as JSON object")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "deep-merge into the stored record")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runUpdate(ctx context.Context, opts *UpdateOptions, db *facade.DB, f *OutputFormatter, on string) error {
	where, err := parseWhere(f, opts.Where)
	if err != nil {
		return err
	}
	set, err := value.DecodeObject([]byte(opts.Set))
	if err != nil {
		return failCode(f, ErrCodeInvalidFlag, "invalid --set", err)
	}

	rec, err := db.Update(ctx, facade.UpdateQuery{On: on, Where: where, Set: set, Merge: opts.Merge})
	if err != nil {
		return fail(f, "update failed", err)
	}
	return f.Success(rec)
}
