package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
	"twcli/output"
)

var (
	projectSearchTerm string
	projectAliasID    string
	projectAliasName  string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "List Teamwork projects and manage local aliases.",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, optionally filtered by a search term.",
	Example: `
  twcli project list
  twcli project list -s website
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTeamworkClient(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		projects, err := client.ListProjects(ctx, projectSearchTerm)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}
		return output.PrintProjects(os.Stdout, projects, *cfg)
	},
}

var projectAliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Give a project a short local alias.",
	Example: `
  twcli project alias -i 42 -n web
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(projectAliasID)
		name := strings.TrimSpace(projectAliasName)
		if id == "" || name == "" {
			return errors.New("both --id and --name are required")
		}

		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg.WithAlias(id, name)); err != nil {
			return err
		}
		fmt.Printf("Alias %q saved for project %s\n", name, id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAliasCmd)

	projectListCmd.Flags().StringVarP(&projectSearchTerm, "search", "s", "", "Search term")
	projectAliasCmd.Flags().StringVarP(&projectAliasID, "id", "i", "", "Project id")
	projectAliasCmd.Flags().StringVarP(&projectAliasName, "name", "n", "", "Alias")
}
