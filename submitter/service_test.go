package submitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twcli/config"
	"twcli/teamwork"
	"twcli/worklog"
)

type createdCall struct {
	taskID string
	input  teamwork.TimeEntryInput
}

type fakeGateway struct {
	accountErr error
	fetchErr   error
	entries    []worklog.Entry
	statuses   map[string]string
	createErrs map[string]error
	created    []createdCall
	fetchCalls int
}

func (f *fakeGateway) FetchAccountID(context.Context) (string, error) {
	if f.accountErr != nil {
		return "", f.accountErr
	}
	return "77", nil
}

func (f *fakeGateway) FetchRecentEntries(_ context.Context, _ int, _ *time.Time) ([]worklog.Entry, error) {
	f.fetchCalls++
	return f.entries, f.fetchErr
}

func (f *fakeGateway) CreateEntry(_ context.Context, taskID string, input teamwork.TimeEntryInput) (teamwork.CreatedEntry, error) {
	f.created = append(f.created, createdCall{taskID: taskID, input: input})
	if err := f.createErrs[input.Date]; err != nil {
		return teamwork.CreatedEntry{}, err
	}
	status := teamwork.StatusOK
	if custom, ok := f.statuses[input.Date]; ok {
		status = custom
	}
	return teamwork.CreatedEntry{ID: teamwork.FlexibleID("id-" + input.Date), Status: status}, nil
}

type fakeJournal struct {
	runs []Request
	days []DayResult
}

func (j *fakeJournal) RecordRun(_ context.Context, req Request) (string, error) {
	j.runs = append(j.runs, req)
	return "run-1", nil
}

func (j *fakeJournal) RecordDay(_ context.Context, runID string, day DayResult) error {
	if runID != "run-1" {
		return errors.New("unknown run")
	}
	j.days = append(j.days, day)
	return nil
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	require.NoError(t, err)
	return parsed
}

func fixedClock(t *testing.T, value string) func() time.Time {
	today := mustDay(t, value).Add(10 * time.Hour)
	return func() time.Time { return today }
}

func createdDates(calls []createdCall) []string {
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, call.input.Date)
	}
	return out
}

func TestSaveTime_SpreadsOverConsecutiveWorkingDays(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:      "1001",
		StartDate:   mustDay(t, "2026-03-02"),
		Hours:       16,
		Description: "feature work",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"20260302", "20260303"}, createdDates(gateway.created))
	assert.Equal(t, 16, result.Requested)
	assert.Equal(t, 16, result.Allocated())
	require.Len(t, result.Days, 2)
	assert.Equal(t, StatusCreated, result.Days[0].Outcome.Status)
	assert.Equal(t, "id-20260302", result.Days[0].Outcome.EntryID)

	call := gateway.created[0]
	assert.Equal(t, "1001", call.taskID)
	assert.Equal(t, teamwork.TimeEntryInput{
		Description: "feature work",
		PersonID:    "77",
		Date:        "20260302",
		Time:        EntryStartTime,
		Hours:       "8",
		Minutes:     "0",
	}, call.input)
}

func TestSaveTime_PartialDayUsesRemainingQuota(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{entries: []worklog.Entry{
		{Date: mustDay(t, "2026-03-02").Add(9 * time.Hour), Hours: 5, TaskID: "9"},
	}}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     3,
	})
	require.NoError(t, err)

	require.Len(t, gateway.created, 1)
	assert.Equal(t, "3", gateway.created[0].input.Hours)
	assert.Equal(t, 3, result.Allocated())
}

func TestSaveTime_SkipsWeekend(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	_, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-06"),
		Hours:     16,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"20260306", "20260309"}, createdDates(gateway.created))
}

func TestSaveTime_TimeOffReducesQuota(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	timesOff := []config.TimeOff{{Date: "2026-03-02", Hours: 8}, {Date: "2026-03-03", Hours: 4}}
	service := NewService(gateway, timesOff).WithClock(fixedClock(t, "2026-03-13"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     12,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"20260303", "20260304"}, createdDates(gateway.created))
	assert.Equal(t, "4", gateway.created[0].input.Hours)
	assert.Equal(t, 12, result.Allocated())
}

func TestSaveTime_StopsAtToday(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-04"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     40,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"20260302", "20260303"}, createdDates(gateway.created))
	assert.Equal(t, 40, result.Requested)
	assert.Equal(t, 16, result.Allocated())
}

func TestSaveTime_DryRunDoesNotWrite(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     16,
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.Empty(t, gateway.created)
	require.Len(t, result.Days, 2)
	assert.Equal(t, StatusSimulated, result.Days[1].Outcome.Status)
	assert.Equal(t, 16, result.Allocated())
}

func TestSaveTime_SubmissionFailuresContinue(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{
		statuses:   map[string]string{"20260302": "Error"},
		createErrs: map[string]error{"20260303": errors.New("connection reset")},
	}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     24,
	})
	require.NoError(t, err)

	assert.Len(t, gateway.created, 3)
	require.Len(t, result.Days, 3)
	assert.Equal(t, StatusRejected, result.Days[0].Outcome.Status)
	assert.ErrorIs(t, result.Days[0].Outcome.Err, teamwork.ErrUnexpectedStatus)
	assert.Equal(t, StatusFailed, result.Days[1].Outcome.Status)
	assert.Equal(t, StatusCreated, result.Days[2].Outcome.Status)
	assert.Len(t, result.Failed(), 2)
	assert.Equal(t, 8, result.Allocated())
}

func TestSaveTime_FetchFailuresAbortBeforeWrites(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name    string
		gateway *fakeGateway
	}{
		{name: "account", gateway: &fakeGateway{accountErr: boom}},
		{name: "entries", gateway: &fakeGateway{fetchErr: boom}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service := NewService(tc.gateway, nil).WithClock(fixedClock(t, "2026-03-13"))
			_, err := service.SaveTime(context.Background(), Request{
				TaskID:    "1001",
				StartDate: mustDay(t, "2026-03-02"),
				Hours:     8,
			})
			require.ErrorIs(t, err, boom)
			assert.Empty(t, tc.gateway.created)
		})
	}
}

func TestSaveTime_UsesSingleSnapshot(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil).WithClock(fixedClock(t, "2026-03-13"))

	_, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     40,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.fetchCalls)
}

func TestSaveTime_RejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	service := NewService(gateway, nil)

	_, err := service.SaveTime(context.Background(), Request{TaskID: "1001", StartDate: mustDay(t, "2026-03-02")})
	require.Error(t, err)

	_, err = service.SaveTime(context.Background(), Request{TaskID: " ", StartDate: mustDay(t, "2026-03-02"), Hours: 8})
	require.Error(t, err)
	assert.Equal(t, 0, gateway.fetchCalls)
}

func TestSaveTime_RecordsJournal(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	journal := &fakeJournal{}
	service := NewService(gateway, nil).
		WithClock(fixedClock(t, "2026-03-13")).
		WithJournal(journal)

	result, err := service.SaveTime(context.Background(), Request{
		TaskID:    "1001",
		StartDate: mustDay(t, "2026-03-02"),
		Hours:     16,
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	require.Len(t, journal.runs, 1)
	assert.Equal(t, 16, journal.runs[0].Hours)
	assert.Len(t, journal.days, 2)
}
