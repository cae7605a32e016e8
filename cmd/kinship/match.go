package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kinship/internal/family/handler"
	"kinship/internal/family/matching"
	"kinship/internal/family/models"
	"kinship/internal/family/store"
	id "kinship/pkg/domain"
)

type matchFlags struct {
	firstName   string
	middleName  string
	lastName    string
	gender      string
	dateOfBirth string
	address     models.AddressCriteria
	religion    models.ReligionCriteria
	requester   string
	mode        string
	format      string
}

func newMatchCmd() *cobra.Command {
	flags := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Search for existing persons that duplicate a prospective one",
		Long: `Scores stored persons sharing the given address and religion against
the prospective person's name and date of birth.

Examples:
  kinship match --first Maria --last Garcia --gender female --dob 1985-03-02 \
    --country ES --religion catholic
  kinship match --first Maria --last Garcia --gender female --dob 1985-03-02 \
    --country ES --religion catholic --requester <account-id> --mode flag --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.firstName, "first", "", "Given name (required)")
	f.StringVar(&flags.middleName, "middle", "", "Middle name")
	f.StringVar(&flags.lastName, "last", "", "Family name (required)")
	f.StringVar(&flags.gender, "gender", "", "Gender: male, female, unknown (required)")
	f.StringVar(&flags.dateOfBirth, "dob", "", "Date of birth, YYYY-MM-DD (required)")
	f.StringVar(&flags.address.Country, "country", "", "Address country (required)")
	f.StringVar(&flags.address.State, "state", "", "Address state")
	f.StringVar(&flags.address.District, "district", "", "Address district")
	f.StringVar(&flags.address.SubDistrict, "sub-district", "", "Address sub-district")
	f.StringVar(&flags.address.Locality, "locality", "", "Address locality")
	f.StringVar(&flags.religion.Religion, "religion", "", "Religion (required)")
	f.StringVar(&flags.religion.Category, "category", "", "Religion category")
	f.StringVar(&flags.religion.SubCategory, "sub-category", "", "Religion sub-category")
	f.StringVar(&flags.requester, "requester", "", "Requesting account id (default: an account with no person)")
	f.StringVar(&flags.mode, "mode", string(models.ExclusionDrop), "Exclusion mode: drop, flag")
	f.StringVar(&flags.format, "format", formatText, "Output format: text, json")
	return cmd
}

func runMatch(cmd *cobra.Command, flags *matchFlags) error {
	if err := checkFormat(flags.format); err != nil {
		return err
	}

	requester := id.UserID(uuid.New())
	if flags.requester != "" {
		parsed, err := id.ParseUserID(flags.requester)
		if err != nil {
			return err
		}
		requester = parsed
	}

	req := &handler.MatchRequest{
		FirstName:     flags.firstName,
		MiddleName:    flags.middleName,
		LastName:      flags.lastName,
		Gender:        flags.gender,
		DateOfBirth:   flags.dateOfBirth,
		Address:       flags.address,
		Religion:      flags.religion,
		ExclusionMode: flags.mode,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	return withStore(ctx, func(backend store.Backend) error {
		svc := matching.New(backend, matching.WithLogger(newLogger()))
		candidates, err := svc.FindDuplicates(ctx, req.Query(requester))
		if err != nil {
			return err
		}
		return printMatches(cmd.OutOrStdout(), candidates, flags.format)
	})
}
