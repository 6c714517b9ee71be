package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the twcli configuration file.",
	Long: `Display, edit, and delete the twcli configuration file.

The configuration is a JSON document at $HOME/.teamwork.json holding:
- company_id and token (written by "twcli auth")
- project_aliases[].project_id / alias
- times_off[].date / hours
- starred_tasks[]

TWCLI_COMPANY_ID and TWCLI_TOKEN override the stored credentials.`,
	Example: `
  # Show active config with the token masked
  twcli config show

  # Show active config as YAML
  twcli config show --format yaml

  # Open active config in editor (creates example if missing)
  twcli config edit

  # Delete active config file
  twcli config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
