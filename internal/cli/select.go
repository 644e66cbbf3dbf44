package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/kv"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Where  string
	Ranges []string
	Limit  int
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <store>",
		Short: "Read records matching a filter",
		Long: `Read records from a store.

--where takes a JSON filter: literal fields must be strictly equal,
operator clauses apply equal, like or lowwer in order. A single id or key
literal is answered by direct key lookup. --range restricts the scan to an
inclusive key range and may be repeated.

Examples:
  kvq select users --where '{"name":{"like":"Jo"}}'
  kvq select users --where '{"id":1}'
  kvq select users --range 1:10 --limit 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, func(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
				return runSelect(ctx, opts, db, f, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "filter as JSON object")
	cmd.Flags().StringArrayVar(&opts.Ranges, "range", nil, "inclusive key range start:end (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records to scan (0 = no limit)")

	return cmd
}

func runSelect(ctx context.Context, opts *SelectOptions, db *facade.DB, f *OutputFormatter, from string) error {
	where, err := parseWhere(f, opts.Where)
	if err != nil {
		return err
	}

	q := facade.SelectQuery{From: from, Where: where, Limit: opts.Limit}
	for _, raw := range opts.Ranges {
		start, end, ok := splitRange(raw)
		if !ok {
			return failCode(f, ErrCodeInvalidFlag, "invalid --range", fmt.Errorf("range %q: want start:end", raw))
		}
		q.Range = append(q.Range, kv.KeyRange{Start: parseKey(start), End: parseKey(end)})
	}

	seq, err := db.Select(ctx, q)
	if err != nil {
		return fail(f, "select failed", err)
	}
	f.VerboseLog("%d record(s)", seq.Len())
	return f.Values(seq.Items())
}
