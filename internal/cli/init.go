package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/kvquery/internal/facade"
)

// InitResult describes a connected database.
type InitResult struct {
	Name    string         `json:"name"`
	Version int            `json:"version"`
	Stores  map[string]int `json:"stores"` // store name -> record count
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create and seed the database from the schema",
		Long: `Connect to the database, creating every store and index and inserting
seed data when the database is new. Reports each store's record count.

Example:
  kvq init --db app.db --schema schema.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(rootOpts, cmd, runInit)
		},
	}
	return cmd
}

func runInit(ctx context.Context, db *facade.DB, f *OutputFormatter) error {
	def := db.Schema()
	result := InitResult{
		Name:    def.Name,
		Version: def.Version,
		Stores:  make(map[string]int, len(def.Stores)),
	}
	for _, s := range def.Stores {
		n, err := db.Count(ctx, s.Name)
		if err != nil {
			return fail(f, "counting "+s.Name, err)
		}
		result.Stores[s.Name] = n
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	f.VerboseLog("Database %q at version %d", result.Name, result.Version)
	for _, s := range def.Stores {
		if err := f.Success(formatCount(s.Name, result.Stores[s.Name])); err != nil {
			return err
		}
	}
	return nil
}
