package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"kinship/internal/family/store"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load persons and relationships from a YAML fixture",
		Long: `Loads a YAML fixture into the store. Person ids derive from fixture keys,
so seeding the same file twice updates records instead of duplicating them.

Examples:
  kinship seed testdata/family.yaml
  kinship --driver postgres --database-url $DATABASE_URL seed family.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening fixture: %w", err)
	}
	defer f.Close()

	fixture, err := store.LoadFixture(f)
	if err != nil {
		return err
	}

	return withStore(ctx, func(backend store.Backend) error {
		if err := backend.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
		res, err := store.Seed(ctx, backend, fixture)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seeded %d persons and %d relationships.\n", len(res.Persons), res.Relationships)
		keys := make([]string, 0, len(res.Persons))
		for k := range res.Persons {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %-20s %s\n", k, res.Persons[k])
		}
		return nil
	})
}
