package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kinship/internal/family/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the store schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withStore(ctx, func(backend store.Backend) error {
		if err := backend.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
		target := global.driver
		if sqlite, ok := backend.(*store.SQLiteStore); ok {
			target += ": " + sqlite.Path()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s).\n", target)
		return nil
	})
}
