package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twcli/output"
)

var (
	journalListLimit int
	journalDeleteAll bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the local record of save runs.",
	Long: `Every "entries save" run is recorded in a local SQLite journal
($HOME/.twcli/journal.db, override with --db): the request and the outcome
of each allocated day, including rejected and failed submissions.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), journalListLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("Journal is empty.")
			return nil
		}
		return output.PrintRuns(os.Stdout, runs)
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the submissions of one run (id or unique prefix).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return errors.New("run id must not be empty")
		}
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.FindRun(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		submissions, err := store.ListSubmissions(cmd.Context(), run.ID)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: task %s, %d hours from %s", run.ID, run.TaskID, run.Requested, run.StartDate.Format("2006-01-02"))
		if run.DryRun {
			fmt.Print(" (dry run)")
		}
		fmt.Println()
		if run.Description != "" {
			fmt.Printf("Description: %s\n", run.Description)
		}
		if len(submissions) == 0 {
			fmt.Println("No day was allocated.")
			return nil
		}
		return output.PrintSubmissions(os.Stdout, submissions)
	},
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete one run, or every run with --all",
	Long: `Destructive journal cleanup command.

With a run id, the run and its submissions are removed.
With --all, every run is removed.
Before deletion, an interactive security prompt requires typing exactly "Y".
Entries already created in Teamwork are not touched.`,
	Example: `
  # Delete one run (requires interactive confirmation)
  twcli journal delete 3f2c9a1e

  # Clear the journal
  twcli journal delete --all
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if journalDeleteAll == (len(args) == 1) {
			return errors.New("pass either a run id or --all")
		}

		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		if journalDeleteAll {
			confirmed, err := confirmDeletePrompt(promptInput, promptOutput, "Delete all journal runs?")
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
			count, err := store.DeleteAllRuns(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d journal runs\n", count)
			return nil
		}

		run, err := store.FindRun(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		confirmed, err := confirmDeletePrompt(promptInput, promptOutput, fmt.Sprintf("Delete journal run %s?", run.ID))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}
		if _, err := store.DeleteRun(cmd.Context(), run.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted journal run: %s\n", run.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalDeleteCmd)

	journalListCmd.Flags().IntVarP(&journalListLimit, "count", "n", 20, "Number of runs (0 lists all)")
	journalDeleteCmd.Flags().BoolVar(&journalDeleteAll, "all", false, "Delete every run")
}
