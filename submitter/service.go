package submitter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"twcli/config"
	"twcli/internal/logger"
	"twcli/internal/timeutil"
	"twcli/reconcile"
	"twcli/teamwork"
	"twcli/worklog"
)

// EntryStartTime is the start time attached to every created entry.
const EntryStartTime = "08:00"

// Gateway is the remote surface the allocation engine depends on.
type Gateway interface {
	FetchAccountID(ctx context.Context) (string, error)
	FetchRecentEntries(ctx context.Context, limit int, since *time.Time) ([]worklog.Entry, error)
	CreateEntry(ctx context.Context, taskID string, input teamwork.TimeEntryInput) (teamwork.CreatedEntry, error)
}

// Journal records allocation runs. Failures are logged and never abort a run.
type Journal interface {
	RecordRun(ctx context.Context, req Request) (string, error)
	RecordDay(ctx context.Context, runID string, day DayResult) error
}

type Request struct {
	TaskID      string    `validate:"required"`
	StartDate   time.Time `validate:"required"`
	Hours       int       `validate:"gt=0"`
	Description string
	DryRun      bool
}

type Status string

const (
	StatusCreated   Status = "created"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusSimulated Status = "simulated"
)

// Outcome is the result of one submission attempt.
type Outcome struct {
	Status  Status
	Remote  string
	EntryID string
	Err     error
}

func (o Outcome) OK() bool {
	return o.Status == StatusCreated || o.Status == StatusSimulated
}

type DayResult struct {
	Day     time.Time
	Hours   int
	Outcome Outcome
}

type Result struct {
	RunID     string
	Requested int
	DryRun    bool
	Days      []DayResult
}

// Allocated sums the hours of created or simulated days.
func (r *Result) Allocated() int {
	total := 0
	for _, day := range r.Days {
		if day.Outcome.OK() {
			total += day.Hours
		}
	}
	return total
}

// Failed returns the days whose submission did not succeed.
func (r *Result) Failed() []DayResult {
	out := make([]DayResult, 0)
	for _, day := range r.Days {
		if !day.Outcome.OK() {
			out = append(out, day)
		}
	}
	return out
}

type Service struct {
	gateway  Gateway
	timesOff []config.TimeOff
	journal  Journal
	now      func() time.Time
}

func NewService(gateway Gateway, timesOff []config.TimeOff) *Service {
	return &Service{
		gateway:  gateway,
		timesOff: append([]config.TimeOff(nil), timesOff...),
		now:      time.Now,
	}
}

func (s *Service) WithJournal(journal Journal) *Service {
	s.journal = journal
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SaveTime spreads req.Hours over the working days from req.StartDate up to
// today, one entry per day with a non-zero quota. Quotas come from a single
// snapshot of the existing entries taken before the first write.
//
// Result.Requested is the requested total, not what was placed; inspect
// Result.Days for the actual outcome.
func (s *Service) SaveTime(ctx context.Context, req Request) (*Result, error) {
	req.TaskID = strings.TrimSpace(req.TaskID)
	if err := validator.New().Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	log := logger.Named("submitter")
	start := timeutil.StartOfDay(req.StartDate)

	accountID, err := s.gateway.FetchAccountID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch account id: %w", err)
	}
	existing, err := s.gateway.FetchRecentEntries(ctx, reconcile.FetchLimit, &start)
	if err != nil {
		return nil, fmt.Errorf("fetch time entries: %w", err)
	}

	result := &Result{Requested: req.Hours, DryRun: req.DryRun, Days: make([]DayResult, 0, 8)}
	if s.journal != nil {
		runID, err := s.journal.RecordRun(ctx, req)
		if err != nil {
			log.Warn().Err(err).Msg("journal run not recorded")
		}
		result.RunID = runID
	}

	quotas := reconcile.NewQuotaIndex(existing, s.timesOff)
	today := timeutil.StartOfDay(s.now())
	remaining := req.Hours
	cursor := start
	for cursor.Before(today) && remaining > 0 {
		quota := quotas.Remaining(cursor)
		if quota > 0 {
			day := DayResult{Day: cursor, Hours: quota}
			if req.DryRun {
				day.Outcome = Outcome{Status: StatusSimulated}
			} else {
				day.Outcome = s.submit(ctx, accountID, cursor, quota, req)
			}
			result.Days = append(result.Days, day)
			s.recordDay(ctx, result.RunID, day)
		}

		remaining -= quota
		cursor = timeutil.NextWorkingDay(cursor)
	}

	log.Info().
		Str("task_id", req.TaskID).
		Int("requested", req.Hours).
		Int("allocated", result.Allocated()).
		Bool("dry_run", req.DryRun).
		Msg("allocation finished")
	return result, nil
}

func (s *Service) submit(ctx context.Context, accountID string, day time.Time, hours int, req Request) Outcome {
	log := logger.Named("submitter")
	input := teamwork.NewTimeEntryInput(accountID, day, EntryStartTime, hours, req.Description)

	created, err := s.gateway.CreateEntry(ctx, req.TaskID, input)
	if err != nil {
		log.Warn().Err(err).
			Str("day", timeutil.FormatISODay(day)).
			Str("task_id", req.TaskID).
			Msg("time entry submission failed")
		return Outcome{Status: StatusFailed, Err: err}
	}
	if err := created.Err(); err != nil {
		log.Warn().
			Str("day", timeutil.FormatISODay(day)).
			Str("task_id", req.TaskID).
			Str("status", created.Status).
			Msg("unexpected time entry status")
		return Outcome{Status: StatusRejected, Remote: created.Status, Err: err}
	}
	return Outcome{Status: StatusCreated, Remote: created.Status, EntryID: created.ID.String()}
}

func (s *Service) recordDay(ctx context.Context, runID string, day DayResult) {
	if s.journal == nil || runID == "" {
		return
	}
	if err := s.journal.RecordDay(ctx, runID, day); err != nil {
		logger.Named("submitter").Warn().Err(err).
			Str("day", timeutil.FormatISODay(day.Day)).
			Msg("journal day not recorded")
	}
}
