package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/auth"
)

var tokenFlags struct {
	subject string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	Long: `Mint an HS256 token signed with AUTH_JWT_SECRET. The token expires after
AUTH_TOKEN_TTL.

Examples:
  fuelctl token --subject phone
  curl -H "Authorization: Bearer $(fuelctl token -s phone)" localhost:8080/api/v1/dashboard/summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

		raw, err := tokens.Mint(tokenFlags.subject)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), raw)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenFlags.subject, "subject", "s", "fuelctl", "token subject")
}
