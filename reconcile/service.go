package reconcile

import (
	"context"
	"fmt"
	"time"

	"twcli/config"
	"twcli/internal/logger"
	"twcli/internal/timeutil"
	"twcli/worklog"
)

// FetchLimit caps the number of entries read for one computation.
const FetchLimit = 500

// EntrySource reads the user's recent time entries.
type EntrySource interface {
	FetchRecentEntries(ctx context.Context, limit int, since *time.Time) ([]worklog.Entry, error)
}

type Gap struct {
	Since          time.Time
	Hours          int
	Days           int
	RemainderHours int
	Breakdown      []DayQuota
}

type Service struct {
	source   EntrySource
	timesOff []config.TimeOff
	now      func() time.Time
}

func NewService(source EntrySource, timesOff []config.TimeOff) *Service {
	return &Service{
		source:   source,
		timesOff: append([]config.TimeOff(nil), timesOff...),
		now:      time.Now,
	}
}

// WithClock replaces the clock used to determine today.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Gap computes the missing hours from since up to, but excluding, today.
// Nothing is fetched when since is not before today.
func (s *Service) Gap(ctx context.Context, since time.Time) (Gap, error) {
	since = timeutil.StartOfDay(since)
	today := timeutil.StartOfDay(s.now())
	if !today.After(since) {
		return Gap{Since: since}, nil
	}

	entries, err := s.source.FetchRecentEntries(ctx, FetchLimit, &since)
	if err != nil {
		return Gap{}, fmt.Errorf("fetch time entries: %w", err)
	}

	breakdown := DailyBreakdown(since, today, entries, s.timesOff)
	hours := TotalRemaining(breakdown)
	days, remainder := timeutil.SplitHours(hours)

	logger.Named("reconcile").Debug().
		Str("since", timeutil.FormatISODay(since)).
		Int("entries", len(entries)).
		Int("missing_hours", hours).
		Msg("computed gap")

	return Gap{
		Since:          since,
		Hours:          hours,
		Days:           days,
		RemainderHours: remainder,
		Breakdown:      breakdown,
	}, nil
}
