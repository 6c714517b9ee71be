package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"twcli/output"
	"twcli/teamwork"
)

var entriesLastCount int

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"time-entries"},
	Short:   "Read, check and save Teamwork time entries.",
	Long: `Commands around the authenticated user's time entries.

  last        most recent entries
  last-tasks  tasks used by the most recent entries
  missing     hours missing since a date
  save        spread hours over the working days with free quota
  export      write entries to CSV or Excel`,
}

var entriesLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent time entries.",
	Example: `
  twcli entries last
  twcli entries last -n 25
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if entriesLastCount <= 0 {
			return errors.New("--count must be > 0")
		}
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
		entries, err := client.FetchRecentEntries(ctx, entriesLastCount, nil)
		if err != nil {
			return fmt.Errorf("fetch last time entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No time entries found.")
			return nil
		}
		return output.PrintEntries(os.Stdout, entries)
	},
}

var entriesLastTasksCmd = &cobra.Command{
	Use:   "last-tasks",
	Short: "List the distinct tasks of the most recent time entries.",
	Long: fmt.Sprintf(`List the distinct tasks referenced by the last %d time entries,
most recently used first. Starred tasks are marked with *.`, teamwork.LastTasksWindow),
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
		tasks, err := client.LastUsedTasks(ctx)
		if err != nil {
			return fmt.Errorf("fetch last used tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No recently used tasks.")
			return nil
		}
		return output.PrintTasks(os.Stdout, tasks, *cfg)
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd)
	entriesCmd.AddCommand(entriesLastCmd)
	entriesCmd.AddCommand(entriesLastTasksCmd)

	entriesLastCmd.Flags().IntVarP(&entriesLastCount, "count", "n", 10, "Number of entries")
}
