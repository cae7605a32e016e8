// Package main provides the kinship operator CLI: schema setup, fixture
// seeding, and running discovery or duplicate matching against a store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kinship/internal/platform/config"
)

type globalFlags struct {
	driver      string
	sqlitePath  string
	databaseURL string
	logLevel    string
}

var global globalFlags

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()
	driver := cfg.Store.Driver
	if os.Getenv("STORE_DRIVER") == "" {
		// an in-memory store does not outlive a CLI invocation
		driver = config.DriverSQLite
	}

	rootCmd := &cobra.Command{
		Use:           "kinship",
		Short:         "Operate the family graph store and run discovery or duplicate matching",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&global.driver, "driver", driver, "Store driver: sqlite, postgres, memory")
	rootCmd.PersistentFlags().StringVar(&global.sqlitePath, "sqlite-path", cfg.Store.SQLitePath, "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&global.databaseURL, "database-url", cfg.Store.DatabaseURL, "Postgres connection string")
	rootCmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newDiscoverCmd(),
		newMatchCmd(),
		newTokenCmd(),
	)
	return rootCmd
}
