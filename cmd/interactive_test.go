package cmd

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"twcli/config"
	"twcli/internal/timeutil"
	"twcli/teamwork"
	"twcli/worklog"
)

type fakeInteractiveClient struct {
	projects []teamwork.Project
	lists    []teamwork.TaskList
	tasks    []teamwork.Task
	recent   []worklog.Task

	searchTerms []string
	created     []createdCall
}

type createdCall struct {
	taskID string
	input  teamwork.TimeEntryInput
}

func (f *fakeInteractiveClient) FetchAccountID(context.Context) (string, error) {
	return "77", nil
}

func (f *fakeInteractiveClient) FetchRecentEntries(context.Context, int, *time.Time) ([]worklog.Entry, error) {
	return nil, nil
}

func (f *fakeInteractiveClient) CreateEntry(_ context.Context, taskID string, input teamwork.TimeEntryInput) (teamwork.CreatedEntry, error) {
	f.created = append(f.created, createdCall{taskID: taskID, input: input})
	return teamwork.CreatedEntry{ID: "900", Status: teamwork.StatusOK}, nil
}

func (f *fakeInteractiveClient) ListProjects(_ context.Context, searchTerm string) ([]teamwork.Project, error) {
	f.searchTerms = append(f.searchTerms, searchTerm)
	return f.projects, nil
}

func (f *fakeInteractiveClient) ListTaskLists(context.Context, string) ([]teamwork.TaskList, error) {
	return f.lists, nil
}

func (f *fakeInteractiveClient) ListTasks(context.Context, string) ([]teamwork.Task, error) {
	return f.tasks, nil
}

func (f *fakeInteractiveClient) LastUsedTasks(context.Context) ([]worklog.Task, error) {
	return f.recent, nil
}

func newTestSession(t *testing.T, client interactiveClient, cfg config.Config, script string) (*interactiveSession, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	path := filepath.Join(t.TempDir(), ".teamwork.json")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return &interactiveSession{
		ctx:     context.Background(),
		reader:  bufio.NewReader(strings.NewReader(script)),
		out:     out,
		cfg:     cfg,
		cfgPath: path,
		client:  client,
	}, out
}

func TestInteractive_SearchAndSaveTimeOnSubTask(t *testing.T) {
	client := &fakeInteractiveClient{
		projects: []teamwork.Project{{ID: "42", Name: "Website"}},
		lists:    []teamwork.TaskList{{ID: "5", Name: "Sprint", UncompletedCount: 2}},
		tasks: []teamwork.Task{{
			ID:       "1001",
			Content:  "Build",
			SubTasks: []teamwork.Task{{ID: "1002", Content: "API", ParentTaskID: "1001"}},
		}},
	}
	monday := pastMonday()

	script := strings.Join([]string{
		"3",                           // search tasks
		"web",                         // search term
		"1",                           // project
		"1",                           // task list
		"2",                           // sub task API
		"1",                           // save time
		timeutil.FormatISODay(monday), // start date
		"1d",                          // hours
		"pairing",                     // description
		"n",                           // dry run
		"3",                           // back to main menu
		"4",                           // quit
	}, "\n") + "\n"
	session, out := newTestSession(t, client, config.New("acme", "t"), script)

	if err := session.run(); err != nil {
		t.Fatalf("interactive run: %v", err)
	}

	if len(client.searchTerms) != 1 || client.searchTerms[0] != "web" {
		t.Fatalf("unexpected search terms %v", client.searchTerms)
	}
	if len(client.created) != 1 {
		t.Fatalf("expected one created entry, got %+v", client.created)
	}
	call := client.created[0]
	if call.taskID != "1002" || call.input.Hours != "8" || call.input.Date != timeutil.FormatCompactDay(monday) {
		t.Fatalf("unexpected created entry %+v", call)
	}
	if !strings.Contains(out.String(), "Saved 8 of 8 requested hours") {
		t.Fatalf("expected save summary, got:\n%s", out.String())
	}
}

func TestInteractive_StarRecentTask(t *testing.T) {
	client := &fakeInteractiveClient{
		recent: []worklog.Task{{ID: "7", Name: "Review"}, {ID: "3", Name: "Build"}},
	}
	script := "2\n2\n2\n3\n4\n"
	session, out := newTestSession(t, client, config.New("acme", "t"), script)

	if err := session.run(); err != nil {
		t.Fatalf("interactive run: %v", err)
	}

	cfg, err := config.Load(session.cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsStarred("3") || cfg.IsStarred("7") {
		t.Fatalf("unexpected starred tasks %v", cfg.StarredTasks)
	}
	if !strings.Contains(out.String(), "Task 3 starred") {
		t.Fatalf("expected star confirmation, got:\n%s", out.String())
	}
}

func TestInteractive_UnstarStarredTask(t *testing.T) {
	client := &fakeInteractiveClient{
		recent: []worklog.Task{{ID: "1001", Name: "Build"}},
	}
	script := "1\n1\n2\n3\n4\n"
	session, out := newTestSession(t, client, config.New("acme", "t").WithStarredTask("1001"), script)

	if err := session.run(); err != nil {
		t.Fatalf("interactive run: %v", err)
	}
	if !strings.Contains(out.String(), "1) Build") {
		t.Fatalf("expected starred task resolved to its name, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Unstar task") || !strings.Contains(out.String(), "Task 1001 unstarred") {
		t.Fatalf("expected unstar flow, got:\n%s", out.String())
	}

	cfg, err := config.Load(session.cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.IsStarred("1001") {
		t.Fatalf("expected task to be unstarred")
	}
}

func TestInteractive_EmptyStarredListReturnsToMenu(t *testing.T) {
	session, out := newTestSession(t, &fakeInteractiveClient{}, config.New("acme", "t"), "1\n4\n")

	if err := session.run(); err != nil {
		t.Fatalf("interactive run: %v", err)
	}
	if !strings.Contains(out.String(), "No starred tasks.") {
		t.Fatalf("expected empty hint, got:\n%s", out.String())
	}
}
