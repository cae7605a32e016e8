package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	jwttoken "kinship/internal/jwt_token"
	"kinship/internal/platform/config"
	id "kinship/pkg/domain"
)

type tokenFlags struct {
	user string
	ttl  time.Duration
}

func newTokenCmd() *cobra.Command {
	flags := &tokenFlags{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development access token for the HTTP API",
		Long: `Signs an access token with JWT_SIGNING_KEY, JWT_ISSUER and JWT_AUDIENCE
so the server's family routes can be called locally.

Example:
  curl -H "Authorization: Bearer $(kinship token --user <account-id>)" \
    localhost:8080/family/discoveries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.user, "user", "", "Account id (default: random)")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func runToken(cmd *cobra.Command, flags *tokenFlags) error {
	userID := id.UserID(uuid.New())
	if flags.user != "" {
		parsed, err := id.ParseUserID(flags.user)
		if err != nil {
			return err
		}
		userID = parsed
	}

	auth := config.FromEnv().Auth
	svc := jwttoken.NewJWTService(auth.JWTSigningKey, auth.JWTIssuer, auth.JWTAudience)
	token, err := svc.GenerateAccessToken(userID, id.SessionID(uuid.New()), flags.ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
