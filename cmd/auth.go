package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
)

var (
	authCompanyID string
	authToken     string
	authVerify    bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store the Teamwork company and API token.",
	Long: `Save the Teamwork company subdomain and API token to the config file.

The token is sent as the HTTP basic auth user with an empty password.
Existing project aliases, time off and starred tasks are kept.
With --verify the credentials are checked against /me.json before saving.`,
	Example: `
  # Store credentials for https://mycompany.eu.teamwork.com
  twcli auth -c mycompany -t twp_xxxxxxxx

  # Check the credentials first
  twcli auth -c mycompany -t twp_xxxxxxxx --verify
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		companyID := strings.TrimSpace(authCompanyID)
		token := strings.TrimSpace(authToken)
		if companyID == "" || token == "" {
			return errors.New("both --company and --token are required")
		}

		cfg, path, err := loadConfigOrEmpty()
		if err != nil {
			return err
		}
		cfg = cfg.WithCredentials(companyID, token)

		if authVerify {
			client, err := newTeamworkClient(&cfg)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			account, err := client.GetAccount(ctx)
			if err != nil {
				return fmt.Errorf("verify credentials: %w", err)
			}
			fmt.Printf("Authenticated as %s %s (id %s)\n", account.FirstName, account.LastName, account.ID)
		}

		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Company and token saved in %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVarP(&authCompanyID, "company", "c", "", "Teamwork company subdomain")
	authCmd.Flags().StringVarP(&authToken, "token", "t", "", "Teamwork API token")
	authCmd.Flags().BoolVar(&authVerify, "verify", false, "Check the credentials against Teamwork before saving")
}
