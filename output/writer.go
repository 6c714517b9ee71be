package output

import (
	"fmt"
	"strconv"
	"strings"

	"twcli/internal/timeutil"
	"twcli/worklog"
)

type Writer interface {
	Write(path string, entries []worklog.Entry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// sheet is a header row plus data rows, shared by the CSV and Excel writers.
type sheet struct {
	name    string
	headers []string
	rows    [][]string
}

var entryHeaders = []string{"Date", "Hours", "Minutes", "Project", "TaskList", "TaskID", "Task", "Description", "EntryID"}

func entrySheet(entries []worklog.Entry) sheet {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entryRow(entry))
	}
	return sheet{name: "Entries", headers: entryHeaders, rows: rows}
}

func entryRow(entry worklog.Entry) []string {
	return []string{
		timeutil.FormatISODay(entry.Day()),
		strconv.Itoa(entry.Hours),
		strconv.Itoa(entry.Minutes),
		entry.ProjectName,
		entry.TaskListName,
		entry.TaskID,
		entry.TaskName,
		entry.Description,
		entry.ID,
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
