package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"twcli/config"
	"twcli/internal/timeutil"
	"twcli/reconcile"
	"twcli/storage"
	"twcli/submitter"
	"twcli/teamwork"
	"twcli/worklog"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func PrintProjects(w io.Writer, projects []teamwork.Project, cfg config.Config) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tALIAS")
	for _, project := range projects {
		alias, _ := cfg.AliasFor(project.ID.String())
		fmt.Fprintf(tw, "%s\t%s\t%s\n", project.ID, project.Name, alias)
	}
	return tw.Flush()
}

func PrintEntries(w io.Writer, entries []worklog.Entry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tHOURS\tPROJECT\tTASK\tDESCRIPTION")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%d:%02d\t%s\t%s\t%s\n",
			timeutil.FormatISODay(entry.Day()),
			entry.Hours,
			entry.Minutes,
			entry.ProjectName,
			entry.TaskName,
			entry.Description,
		)
	}
	return tw.Flush()
}

func PrintTasks(w io.Writer, tasks []worklog.Task, cfg config.Config) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTASK\tSTARRED")
	for _, task := range tasks {
		star := ""
		if cfg.IsStarred(task.ID) {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", task.ID, task.Label(), star)
	}
	return tw.Flush()
}

func PrintTimesOff(w io.Writer, timesOff []config.TimeOff) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tHOURS")
	for _, item := range timesOff {
		fmt.Fprintf(tw, "%s\t%d\n", item.Date, item.Hours)
	}
	return tw.Flush()
}

func PrintBreakdown(w io.Writer, days []reconcile.DayQuota) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tDAY\tLOGGED\tTIME OFF\tMISSING")
	for _, day := range days {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			timeutil.FormatISODay(day.Day),
			day.Day.Weekday().String()[:3],
			day.Logged,
			day.TimeOff,
			day.Remaining,
		)
	}
	return tw.Flush()
}

func PrintAllocation(w io.Writer, result *submitter.Result) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tHOURS\tSTATUS\tENTRY\tERROR")
	for _, day := range result.Days {
		errText := ""
		if day.Outcome.Err != nil {
			errText = day.Outcome.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			timeutil.FormatISODay(day.Day),
			day.Hours,
			day.Outcome.Status,
			day.Outcome.EntryID,
			errText,
		)
	}
	return tw.Flush()
}

func PrintRuns(w io.Writer, runs []storage.Run) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "RUN\tCREATED\tTASK\tSTART\tHOURS\tDRY RUN")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.TaskID,
			timeutil.FormatISODay(run.StartDate),
			run.Requested,
			run.DryRun,
		)
	}
	return tw.Flush()
}

func PrintSubmissions(w io.Writer, submissions []storage.Submission) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tHOURS\tSTATUS\tREMOTE\tENTRY\tERROR")
	for _, item := range submissions {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			timeutil.FormatISODay(item.Day),
			item.Hours,
			item.Status,
			item.Remote,
			item.EntryID,
			item.Error,
		)
	}
	return tw.Flush()
}
