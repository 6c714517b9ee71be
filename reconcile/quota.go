package reconcile

import (
	"time"

	"twcli/config"
	"twcli/internal/timeutil"
	"twcli/worklog"
)

// WorkingDayHours is the expected logged time of a working day.
const WorkingDayHours = timeutil.HoursPerDay

// DayQuota is the quota breakdown of a single working day.
type DayQuota struct {
	Day       time.Time
	Logged    int
	TimeOff   int
	Remaining int
}

// QuotaIndex holds logged hours and time off per calendar day for one
// snapshot of entries.
type QuotaIndex struct {
	logged map[string]int
	off    map[string]int
}

func NewQuotaIndex(entries []worklog.Entry, timesOff []config.TimeOff) QuotaIndex {
	return QuotaIndex{logged: loggedByDay(entries), off: timeOffByDay(timesOff)}
}

// Day returns the quota breakdown of day. Weekends are not special-cased.
func (q QuotaIndex) Day(day time.Time) DayQuota {
	key := timeutil.FormatISODay(day)
	quota := DayQuota{
		Day:     timeutil.StartOfDay(day),
		Logged:  q.logged[key],
		TimeOff: q.off[key],
	}
	quota.Remaining = max(WorkingDayHours-quota.Logged-quota.TimeOff, 0)
	return quota
}

func (q QuotaIndex) Remaining(day time.Time) int {
	return q.Day(day).Remaining
}

// Breakdown lists the quota of each working day in [since, today). It is
// empty when today is not after since.
func (q QuotaIndex) Breakdown(since, today time.Time) []DayQuota {
	start := timeutil.StartOfDay(since)
	end := timeutil.StartOfDay(today)
	if !end.After(start) {
		return nil
	}

	out := make([]DayQuota, 0, 32)
	for cursor := start; cursor.Before(end); cursor = timeutil.NextDay(cursor) {
		if timeutil.IsWorkingDay(cursor) {
			out = append(out, q.Day(cursor))
		}
	}
	return out
}

// RemainingQuota returns how many hours can still be logged on day, given
// the entries already recorded and the declared time off. The result is
// always within [0, WorkingDayHours]. Weekends are not special-cased here.
func RemainingQuota(day time.Time, entries []worklog.Entry, timesOff []config.TimeOff) int {
	return NewQuotaIndex(entries, timesOff).Remaining(day)
}

// MissingHours sums the remaining quota of every working day in
// [since, today). It is 0 when today is not after since.
func MissingHours(since, today time.Time, entries []worklog.Entry, timesOff []config.TimeOff) int {
	return TotalRemaining(DailyBreakdown(since, today, entries, timesOff))
}

// DailyBreakdown lists the quota of each working day in [since, today).
func DailyBreakdown(since, today time.Time, entries []worklog.Entry, timesOff []config.TimeOff) []DayQuota {
	return NewQuotaIndex(entries, timesOff).Breakdown(since, today)
}

func TotalRemaining(days []DayQuota) int {
	total := 0
	for _, day := range days {
		total += day.Remaining
	}
	return total
}

func loggedByDay(entries []worklog.Entry) map[string]int {
	byDay := make(map[string]int, len(entries))
	for _, entry := range entries {
		byDay[timeutil.FormatISODay(entry.Day())] += entry.Hours
	}
	return byDay
}

func timeOffByDay(timesOff []config.TimeOff) map[string]int {
	byDay := make(map[string]int, len(timesOff))
	for _, item := range timesOff {
		byDay[item.Date] += item.Hours
	}
	return byDay
}
