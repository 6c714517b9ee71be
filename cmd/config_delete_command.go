package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by twcli.

Credentials, aliases, time off and starred tasks are lost. An interactive
security prompt requires typing exactly "Y".`,
	Example: `
  # Delete active config
  twcli config delete

  # Delete config at a custom path
  twcli --config ./custom-teamwork.json config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigPath()
		if err != nil {
			return err
		}

		confirmed, err := confirmDeletePrompt(promptInput, promptOutput, fmt.Sprintf("Delete configuration file %q?", configPath))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if err := removeFile(configPath); err != nil {
			return err
		}
		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
