package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"twcli/config"
	"twcli/internal/timeutil"
	"twcli/reconcile"
	"twcli/worklog"
)

type DailySummary struct {
	Date       string
	Weekday    string
	Hours      decimal.Decimal
	EntryCount int
	TimeOff    int
	Remaining  int
	Projects   []string
}

var dailySummaryHeaders = []string{"Date", "Weekday", "Hours", "EntryCount", "TimeOff", "Remaining", "Projects"}

// BuildDailySummaries groups entries by local calendar day, oldest first.
// Remaining is the day's quota left after logged time and time off, and is
// always 0 on weekends.
func BuildDailySummaries(entries []worklog.Entry, timesOff []config.TimeOff) []DailySummary {
	if len(entries) == 0 {
		return []DailySummary{}
	}

	byDay := make(map[string][]worklog.Entry)
	for _, entry := range entries {
		day := timeutil.FormatISODay(entry.Day())
		byDay[day] = append(byDay[day], entry)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(byDay[day], timesOff))
	}
	return summaries
}

func summarizeDay(entries []worklog.Entry, timesOff []config.TimeOff) DailySummary {
	day := entries[0].Day()
	key := timeutil.FormatISODay(day)

	minutes := 0
	projects := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, entry := range entries {
		minutes += entry.Hours*60 + entry.Minutes
		if entry.ProjectName == "" {
			continue
		}
		if _, ok := seen[entry.ProjectName]; ok {
			continue
		}
		seen[entry.ProjectName] = struct{}{}
		projects = append(projects, entry.ProjectName)
	}
	sort.Strings(projects)

	timeOff := 0
	for _, item := range timesOff {
		if item.Date == key {
			timeOff += item.Hours
		}
	}

	remaining := 0
	if timeutil.IsWorkingDay(day) {
		remaining = reconcile.RemainingQuota(day, entries, timesOff)
	}

	return DailySummary{
		Date:       key,
		Weekday:    day.Weekday().String(),
		Hours:      minutesToHours(minutes),
		EntryCount: len(entries),
		TimeOff:    timeOff,
		Remaining:  remaining,
		Projects:   projects,
	}
}

var minutesPerHour = decimal.NewFromInt(60)

// minutesToHours converts to hours rounded to two places.
func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(2)
}

func dailySummaryRow(summary DailySummary) []string {
	return []string{
		summary.Date,
		summary.Weekday,
		summary.Hours.StringFixed(2),
		strconv.Itoa(summary.EntryCount),
		strconv.Itoa(summary.TimeOff),
		strconv.Itoa(summary.Remaining),
		strings.Join(summary.Projects, "; "),
	}
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	data := sheet{name: "Daily", headers: dailySummaryHeaders, rows: make([][]string, 0, len(summaries))}
	for _, summary := range summaries {
		data.rows = append(data.rows, dailySummaryRow(summary))
	}

	switch normalizeFormat(format) {
	case "csv":
		return writeCSV(path, data)
	case "excel", "xlsx":
		return writeExcel(path, data)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}
