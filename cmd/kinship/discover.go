package main

import (
	"github.com/spf13/cobra"

	"kinship/internal/family/discovery"
	"kinship/internal/family/store"
	id "kinship/pkg/domain"
)

type discoverFlags struct {
	format string
}

func newDiscoverCmd() *cobra.Command {
	flags := &discoverFlags{}

	cmd := &cobra.Command{
		Use:   "discover <person-id>",
		Short: "Suggest relatives for a person from their two-hop neighbourhood",
		Long: `Runs relationship discovery for a person and prints up to twenty
suggestions, closest first.

Examples:
  kinship discover 6f1c2a8e-4b7d-4e3a-9a51-0c2f8d7e1b34
  kinship discover 6f1c2a8e-4b7d-4e3a-9a51-0c2f8d7e1b34 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", formatText, "Output format: text, json")
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string, flags *discoverFlags) error {
	if err := checkFormat(flags.format); err != nil {
		return err
	}
	personID, err := id.ParsePersonID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withStore(ctx, func(backend store.Backend) error {
		svc := discovery.New(backend, discovery.WithLogger(newLogger()))
		results, err := svc.Discover(ctx, personID)
		if err != nil {
			return err
		}
		return printDiscoveries(cmd.OutOrStdout(), results, flags.format)
	})
}
