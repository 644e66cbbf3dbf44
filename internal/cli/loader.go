package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/schema"
	"github.com/roach88/kvquery/internal/store"
	"github.com/roach88/kvquery/internal/value"
)

// openDB loads the schema, opens the SQLite file and connects. Failures
// are written through f and returned as command errors.
func openDB(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*facade.DB, error) {
	if opts.Schema == "" {
		return nil, failCode(f, ErrCodeInvalidFlag, "missing schema", errors.New("--schema (or KVQ_SCHEMA) is required"))
	}
	if opts.DBPath == "" {
		return nil, failCode(f, ErrCodeInvalidFlag, "missing database", errors.New("--db (or KVQ_DB) is required"))
	}

	def, err := schema.Load(opts.Schema)
	if err != nil {
		return nil, fail(f, "loading schema", err)
	}
	f.VerboseLog("Loaded schema %q version %d from %s", def.Name, def.Version, opts.Schema)

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, failCode(f, ErrCodeOpenFailed, "opening database", err)
	}

	db, err := facade.Connect(ctx, s, def,
		facade.WithLogger(opts.Logger),
		facade.WithInterval(opts.Interval),
	)
	if err != nil {
		s.Close()
		return nil, fail(f, "connecting", err)
	}
	return db, nil
}

// withDB runs fn against a connected database, closing it afterwards.
func withDB(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, db *facade.DB, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openDB(ctx, opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db, f)
}

// parseWhere decodes a --where flag. Empty means no constraints.
func parseWhere(f *OutputFormatter, raw string) (query.FilterSpec, error) {
	spec, err := query.ParseFilterSpec([]byte(raw))
	if err != nil {
		return nil, failCode(f, ErrCodeInvalidFlag, "invalid --where", err)
	}
	return spec, nil
}

// parseKey reads one range bound: a JSON number or string, or bare text
// taken as a string. Empty leaves the bound open.
func parseKey(raw string) value.Value {
	if raw == "" {
		return value.Undefined{}
	}
	if v, err := value.Decode([]byte(raw)); err == nil && value.IsKey(v) {
		return v
	}
	return value.String(raw)
}

// splitRange splits "start:end" at the first colon.
func splitRange(raw string) (string, string, bool) {
	return strings.Cut(raw, ":")
}
