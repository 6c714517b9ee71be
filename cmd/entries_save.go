package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twcli/internal/logger"
	"twcli/internal/timeutil"
	"twcli/output"
	"twcli/submitter"
)

var (
	saveTaskID      string
	saveStartDate   string
	saveDuration    string
	saveDescription string
	saveDryRun      bool
	saveNoJournal   bool
)

var entriesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Spread hours over the working days with free quota.",
	Long: `Walk forward from --start and log time on --task until --hours are used up
or today is reached. Today itself is never filled.

Each working day receives one entry sized to its free quota: 8 hours minus
what is already logged minus declared time off. Weekends are skipped.
Existing entries are read once before the first write.

Hours use the compact grammar <N>d<N>h where one day is 8 hours:
  8d4h = 68 hours, 2h = 2 hours, 3d = 24 hours

A failed or rejected day is reported and the next day is still attempted.
Every run is recorded in the local journal unless --no-journal is set.`,
	Example: `
  # Fill two days from the start of the week
  twcli entries save -t 1001 -s 2026-03-02 -H 2d -d "feature work"

  # Preview without writing anything
  twcli entries save -t 1001 -s 2026-03-02 -H 1d4h -d "feature work" --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildSaveRequest(saveTaskID, saveStartDate, saveDuration, saveDescription, saveDryRun)
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

		service := submitter.NewService(client, cfg.TimesOff)
		if !saveNoJournal {
			journal, err := openJournal()
			if err != nil {
				logger.Named("cmd").Warn().Err(err).Msg("journal unavailable, continuing without it")
			} else {
				defer journal.Close()
				service.WithJournal(journal)
			}
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		result, err := service.SaveTime(ctx, req)
		if err != nil {
			return err
		}
		return printSaveResult(os.Stdout, result)
	},
}

func buildSaveRequest(taskID, startDate, duration, description string, dryRun bool) (submitter.Request, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return submitter.Request{}, errors.New("--task is required")
	}
	if strings.TrimSpace(startDate) == "" {
		return submitter.Request{}, errors.New("--start is required")
	}
	start, err := timeutil.ParseISODay(startDate)
	if err != nil {
		return submitter.Request{}, err
	}
	hours, err := timeutil.ParseDuration(duration)
	if err != nil {
		return submitter.Request{}, err
	}
	if hours <= 0 {
		return submitter.Request{}, fmt.Errorf("could not parse %q: duration must be > 0", duration)
	}

	return submitter.Request{
		TaskID:      taskID,
		StartDate:   start,
		Hours:       hours,
		Description: description,
		DryRun:      dryRun,
	}, nil
}

func printSaveResult(w io.Writer, result *submitter.Result) error {
	if len(result.Days) == 0 {
		fmt.Fprintln(w, "No working day with free quota before today.")
	} else if err := output.PrintAllocation(w, result); err != nil {
		return err
	}

	verb := "Saved"
	if result.DryRun {
		verb = "Dry run: would save"
	}
	fmt.Fprintf(w, "%s %d of %d requested hours", verb, result.Allocated(), result.Requested)
	if failed := len(result.Failed()); failed > 0 {
		fmt.Fprintf(w, " (%d days failed)", failed)
	}
	fmt.Fprintln(w)
	if result.RunID != "" {
		fmt.Fprintf(w, "Journal run: %s\n", result.RunID)
	}
	return nil
}

func init() {
	entriesCmd.AddCommand(entriesSaveCmd)

	entriesSaveCmd.Flags().StringVarP(&saveTaskID, "task", "t", "", "Task id")
	entriesSaveCmd.Flags().StringVarP(&saveStartDate, "start", "s", "", "First day to fill (YYYY-MM-DD)")
	entriesSaveCmd.Flags().StringVarP(&saveDuration, "hours", "H", "", "Hours to spread, e.g. 8d4h")
	entriesSaveCmd.Flags().StringVarP(&saveDescription, "description", "d", "", "Description attached to every entry")
	entriesSaveCmd.Flags().BoolVarP(&saveDryRun, "dry-run", "r", false, "Compute the allocation without writing")
	entriesSaveCmd.Flags().BoolVar(&saveNoJournal, "no-journal", false, "Do not record the run in the local journal")
}
