package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twcli/internal/timeutil"
	"twcli/output"
	"twcli/reconcile"
)

var (
	entriesMissingSince   string
	entriesMissingDetails bool
)

var entriesMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Compute the hours missing since a date.",
	Long: `Sum the free quota of every working day from --since up to yesterday.

Each working day has a quota of 8 hours, reduced by logged entries and by
declared time off. Weekends do not count.`,
	Example: `
  twcli entries missing -s 2026-03-01
  twcli entries missing -s 2026-03-01 --details
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(entriesMissingSince) == "" {
			return errors.New("--since is required")
		}
		since, err := timeutil.ParseISODay(entriesMissingSince)
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTeamworkClient(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Getting missing entries since %s ...\n", timeutil.FormatISODay(since))
		ctx, cancel := commandContext(cmd)
		defer cancel()
		gap, err := reconcile.NewService(client, cfg.TimesOff).Gap(ctx, since)
		if err != nil {
			return err
		}
		return printGap(os.Stdout, gap, entriesMissingDetails)
	},
}

func printGap(w io.Writer, gap reconcile.Gap, details bool) error {
	if details && len(gap.Breakdown) > 0 {
		if err := output.PrintBreakdown(w, gap.Breakdown); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Missing %d days and %d hours\n", gap.Days, gap.RemainderHours)
	return err
}

func init() {
	entriesCmd.AddCommand(entriesMissingCmd)

	entriesMissingCmd.Flags().StringVarP(&entriesMissingSince, "since", "s", "", "First day to check (YYYY-MM-DD)")
	entriesMissingCmd.Flags().BoolVar(&entriesMissingDetails, "details", false, "Print the per-day breakdown")
}
