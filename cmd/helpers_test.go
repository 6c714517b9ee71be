package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"twcli/config"
	"twcli/reconcile"
	"twcli/submitter"
)

func TestTimeOffPrefix(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		year    string
		month   string
		want    string
		wantErr bool
	}{
		{name: "defaults to current year", want: "2026"},
		{name: "explicit year", year: "2025", want: "2025"},
		{name: "month is zero padded", year: "2026", month: "3", want: "2026-03"},
		{name: "month without year uses current year", month: "11", want: "2026-11"},
		{name: "month out of range", month: "13", wantErr: true},
		{name: "month not numeric", month: "march", wantErr: true},
		{name: "short year", year: "26", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeOffPrefix(tt.year, tt.month, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildSaveRequest(t *testing.T) {
	req, err := buildSaveRequest(" 1001 ", "2026-03-02", "1d4h", "feature work", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TaskID != "1001" || req.Hours != 12 || !req.DryRun || req.Description != "feature work" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.StartDate.Day() != 2 || req.StartDate.Month() != time.March {
		t.Fatalf("unexpected start date %v", req.StartDate)
	}

	failures := []struct {
		name     string
		task     string
		start    string
		duration string
	}{
		{name: "missing task", start: "2026-03-02", duration: "2h"},
		{name: "missing start", task: "1", duration: "2h"},
		{name: "bad date", task: "1", start: "02.03.2026", duration: "2h"},
		{name: "bad duration", task: "1", start: "2026-03-02", duration: "2x"},
		{name: "zero duration", task: "1", start: "2026-03-02", duration: "0h"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildSaveRequest(tt.task, tt.start, tt.duration, "", false); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPrintGap(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	gap := reconcile.Gap{
		Since:          monday,
		Hours:          19,
		Days:           2,
		RemainderHours: 3,
		Breakdown: []reconcile.DayQuota{
			{Day: monday, Logged: 0, Remaining: 8},
			{Day: monday.AddDate(0, 0, 1), Logged: 5, Remaining: 3},
		},
	}

	var plain bytes.Buffer
	if err := printGap(&plain, gap, false); err != nil {
		t.Fatalf("print gap: %v", err)
	}
	if plain.String() != "Missing 2 days and 3 hours\n" {
		t.Fatalf("unexpected summary %q", plain.String())
	}

	var detailed bytes.Buffer
	if err := printGap(&detailed, gap, true); err != nil {
		t.Fatalf("print gap details: %v", err)
	}
	out := detailed.String()
	if !strings.Contains(out, "MISSING") || !strings.Contains(out, "2026-03-03") {
		t.Fatalf("expected breakdown table, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "Missing 2 days and 3 hours\n") {
		t.Fatalf("expected summary line last, got:\n%s", out)
	}
}

func TestPrintSaveResult(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	result := &submitter.Result{
		RunID:     "run-1",
		Requested: 16,
		Days: []submitter.DayResult{
			{Day: day, Hours: 8, Outcome: submitter.Outcome{Status: submitter.StatusCreated, EntryID: "555"}},
			{Day: day.AddDate(0, 0, 1), Hours: 8, Outcome: submitter.Outcome{Status: submitter.StatusFailed, Err: errors.New("boom")}},
		},
	}

	var out bytes.Buffer
	if err := printSaveResult(&out, result); err != nil {
		t.Fatalf("print result: %v", err)
	}
	text := out.String()
	for _, want := range []string{"555", "boom", "Saved 8 of 16 requested hours (1 days failed)", "Journal run: run-1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	var empty bytes.Buffer
	if err := printSaveResult(&empty, &submitter.Result{Requested: 4, DryRun: true}); err != nil {
		t.Fatalf("print empty result: %v", err)
	}
	if !strings.Contains(empty.String(), "Dry run: would save 0 of 4 requested hours") {
		t.Fatalf("unexpected empty output:\n%s", empty.String())
	}
}

func TestWriteConfig_MasksToken(t *testing.T) {
	cfg := config.New("acme", "twp_abcdef1234").WithStarredTask("1001")

	var jsonOut bytes.Buffer
	if err := writeConfig(&jsonOut, cfg, "json"); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if strings.Contains(jsonOut.String(), "twp_abcdef1234") || !strings.Contains(jsonOut.String(), `"token": "**********1234"`) {
		t.Fatalf("expected masked token in json:\n%s", jsonOut.String())
	}

	var yamlOut bytes.Buffer
	if err := writeConfig(&yamlOut, cfg, "yaml"); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if !strings.Contains(yamlOut.String(), "company_id: acme") || strings.Contains(yamlOut.String(), "twp_abcdef1234") {
		t.Fatalf("unexpected yaml:\n%s", yamlOut.String())
	}

	if err := writeConfig(&bytes.Buffer{}, cfg, "toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestDetectExportFormat(t *testing.T) {
	tests := map[string]string{
		"out.csv":   "csv",
		"out.XLSX":  "excel",
		"out.xlsm":  "excel",
		"out":       "csv",
		"out.daily": "csv",
	}
	for path, want := range tests {
		if got := detectExportFormat(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}
