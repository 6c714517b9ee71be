package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"twcli/config"
)

var configShowFormat string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The token
is masked except for its last four characters.`,
	Example: `
  # Show active configuration
  twcli config show

  # As YAML
  twcli config show --format yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Println("Config file loaded from:", path)
		return writeConfig(os.Stdout, *cfg, configShowFormat)
	},
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	masked := cfg
	masked.Token = cfg.MaskedToken()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		payload, err := json.MarshalIndent(masked, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(masked); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format %q (supported: json, yaml)", format)
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().StringVar(&configShowFormat, "format", "json", "Output format: json|yaml")
}
