package teamwork

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"twcli/internal/logger"
	"twcli/internal/timeutil"
	"twcli/worklog"
)

const (
	StatusOK = "OK"

	// LastTasksWindow is the number of recent entries scanned for last used tasks.
	LastTasksWindow = 60
)

// ErrUnexpectedStatus marks a creation response whose STATUS is not "OK".
var ErrUnexpectedStatus = errors.New("unexpected teamwork status")

// Client defines the Teamwork API operations used by the CLI.
type Client interface {
	GetAccount(ctx context.Context) (Account, error)
	FetchAccountID(ctx context.Context) (string, error)
	ListProjects(ctx context.Context, searchTerm string) ([]Project, error)
	ListTaskLists(ctx context.Context, projectID string) ([]TaskList, error)
	ListTasks(ctx context.Context, taskListID string) ([]Task, error)
	FetchRecentEntries(ctx context.Context, limit int, since *time.Time) ([]worklog.Entry, error)
	LastUsedTasks(ctx context.Context) ([]worklog.Task, error)
	CreateEntry(ctx context.Context, taskID string, input TimeEntryInput) (CreatedEntry, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	CompanyID  string
	Token      string
	BaseURL    string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient httpDoer
	accountID  string
}

// BaseURLForCompany returns the per-company API host.
func BaseURLForCompany(companyID string) string {
	return fmt.Sprintf("https://%s.eu.teamwork.com", strings.TrimSpace(companyID))
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("token is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		if strings.TrimSpace(cfg.CompanyID) == "" {
			return nil, errors.New("company id is required")
		}
		baseURL = BaseURLForCompany(cfg.CompanyID)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// FlexibleID accepts identifiers sent either as JSON strings or numbers.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch text {
	case "", "null", `""`:
		*id = ""
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*id = FlexibleID(strings.TrimSpace(asString))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err == nil {
		*id = FlexibleID(number.String())
		return nil
	}

	return fmt.Errorf("unsupported id value %q", text)
}

func (id FlexibleID) String() string {
	return string(id)
}

// FlexibleInt accepts integers sent either as JSON numbers or numeric strings.
type FlexibleInt int

func (v *FlexibleInt) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch text {
	case "", "null", `""`:
		*v = 0
		return nil
	}

	var number int
	if err := json.Unmarshal(data, &number); err == nil {
		*v = FlexibleInt(number)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, err := strconv.Atoi(strings.TrimSpace(asString))
		if err != nil {
			return fmt.Errorf("parse integer string %q: %w", asString, err)
		}
		*v = FlexibleInt(parsed)
		return nil
	}

	return fmt.Errorf("unsupported integer value %q", text)
}

type Account struct {
	ID        FlexibleID `json:"id"`
	FirstName string     `json:"first-name"`
	LastName  string     `json:"last-name"`
	Email     string     `json:"email-address"`
}

type accountResponse struct {
	Status  string  `json:"STATUS"`
	Account Account `json:"person"`
}

type Project struct {
	ID     FlexibleID `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
}

func (p Project) Label() string {
	return p.Name
}

type projectsResponse struct {
	Status   string    `json:"STATUS"`
	Projects []Project `json:"projects"`
}

type TaskList struct {
	ID               FlexibleID  `json:"id"`
	Name             string      `json:"name"`
	UncompletedCount FlexibleInt `json:"uncompleted-count"`
}

func (l TaskList) Label() string {
	return fmt.Sprintf("%s (%d tasks)", l.Name, l.UncompletedCount)
}

type taskListsResponse struct {
	Status    string     `json:"STATUS"`
	TaskLists []TaskList `json:"tasklists"`
}

type Task struct {
	ID           FlexibleID `json:"id"`
	Content      string     `json:"content"`
	ParentTaskID FlexibleID `json:"parentTaskId"`
	SubTasks     []Task     `json:"subTasks"`
}

func (t Task) ToTask() worklog.Task {
	subTasks := make([]worklog.Task, 0, len(t.SubTasks))
	for _, sub := range t.SubTasks {
		subTasks = append(subTasks, sub.ToTask())
	}
	return worklog.Task{
		ID:       t.ID.String(),
		Name:     t.Content,
		ParentID: t.ParentTaskID.String(),
		SubTasks: subTasks,
	}
}

type tasksResponse struct {
	Status string `json:"STATUS"`
	Tasks  []Task `json:"todo-items"`
}

type TimeEntry struct {
	ID           FlexibleID  `json:"id"`
	Description  string      `json:"description"`
	Date         time.Time   `json:"date"`
	Hours        FlexibleInt `json:"hours"`
	Minutes      FlexibleInt `json:"minutes"`
	ProjectID    FlexibleID  `json:"project-id"`
	ProjectName  string      `json:"project-name"`
	TodoListID   FlexibleID  `json:"todo-list-id"`
	TodoListName string      `json:"todo-list-name"`
	TodoItemID   FlexibleID  `json:"todo-item-id"`
	TodoItemName string      `json:"todo-item-name"`
}

func (e TimeEntry) ToEntry() worklog.Entry {
	return worklog.Entry{
		ID:           e.ID.String(),
		Date:         e.Date,
		Hours:        int(e.Hours),
		Minutes:      int(e.Minutes),
		TaskID:       e.TodoItemID.String(),
		TaskName:     e.TodoItemName,
		TaskListName: e.TodoListName,
		ProjectID:    e.ProjectID.String(),
		ProjectName:  e.ProjectName,
		Description:  e.Description,
	}
}

type timeEntriesResponse struct {
	Status      string      `json:"STATUS"`
	TimeEntries []TimeEntry `json:"time-entries"`
}

// TimeEntryInput is the creation payload, nested under "time-entry".
type TimeEntryInput struct {
	Description string `json:"description"`
	PersonID    string `json:"person-id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Hours       string `json:"hours"`
	Minutes     string `json:"minutes"`
}

// NewTimeEntryInput builds a payload for a whole number of hours on day.
func NewTimeEntryInput(personID string, day time.Time, startTime string, hours int, description string) TimeEntryInput {
	return TimeEntryInput{
		Description: description,
		PersonID:    personID,
		Date:        timeutil.FormatCompactDay(day),
		Time:        startTime,
		Hours:       strconv.Itoa(hours),
		Minutes:     "0",
	}
}

type createTimeEntryRequest struct {
	TimeEntry TimeEntryInput `json:"time-entry"`
}

// CreatedEntry is the advisory creation outcome. Only Status "OK" is success.
type CreatedEntry struct {
	ID     FlexibleID `json:"timeLogId"`
	Status string     `json:"STATUS"`
}

func (c CreatedEntry) OK() bool {
	return c.Status == StatusOK
}

// Err returns nil for "OK" and a wrapped ErrUnexpectedStatus otherwise.
func (c CreatedEntry) Err() error {
	if c.OK() {
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnexpectedStatus, c.Status)
}

func (c *HTTPClient) GetAccount(ctx context.Context) (Account, error) {
	var out accountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/me.json", nil, nil, &out); err != nil {
		return Account{}, err
	}
	if out.Account.ID == "" {
		return Account{}, errors.New("decode response GET /me.json: missing person id")
	}
	return out.Account, nil
}

// FetchAccountID returns the authenticated person id, cached after the first call.
func (c *HTTPClient) FetchAccountID(ctx context.Context) (string, error) {
	if c.accountID != "" {
		return c.accountID, nil
	}
	account, err := c.GetAccount(ctx)
	if err != nil {
		return "", err
	}
	c.accountID = account.ID.String()
	return c.accountID, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, searchTerm string) ([]Project, error) {
	query := url.Values{}
	if term := strings.TrimSpace(searchTerm); term != "" {
		query.Set("searchTerm", term)
	}
	var out projectsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/projects.json", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *HTTPClient) ListTaskLists(ctx context.Context, projectID string) ([]TaskList, error) {
	path := fmt.Sprintf("/projects/%s/tasklists.json", url.PathEscape(projectID))
	var out taskListsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.TaskLists, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, taskListID string) ([]Task, error) {
	path := fmt.Sprintf("/tasklists/%s/tasks.json", url.PathEscape(taskListID))
	query := url.Values{}
	query.Set("nestSubTasks", "yes")
	var out tasksResponse
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// FetchRecentEntries lists the user's entries newest first, optionally from since on.
func (c *HTTPClient) FetchRecentEntries(ctx context.Context, limit int, since *time.Time) ([]worklog.Entry, error) {
	accountID, err := c.FetchAccountID(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("userId", accountID)
	query.Set("pageSize", strconv.Itoa(limit))
	query.Set("sortby", "date")
	query.Set("sortorder", "DESC")
	if since != nil {
		query.Set("fromdate", timeutil.FormatCompactDay(*since))
	}

	var out timeEntriesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/time_entries.json", query, nil, &out); err != nil {
		return nil, err
	}

	entries := make([]worklog.Entry, 0, len(out.TimeEntries))
	for _, item := range out.TimeEntries {
		entries = append(entries, item.ToEntry())
	}
	logger.Named("teamwork").Debug().Int("count", len(entries)).Msg("fetched time entries")
	return entries, nil
}

// LastUsedTasks returns the distinct tasks of the most recent entries.
func (c *HTTPClient) LastUsedTasks(ctx context.Context) ([]worklog.Task, error) {
	entries, err := c.FetchRecentEntries(ctx, LastTasksWindow, nil)
	if err != nil {
		return nil, err
	}
	return worklog.UniqueTasks(entries), nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, taskID string, input TimeEntryInput) (CreatedEntry, error) {
	path := fmt.Sprintf("/tasks/%s/time_entries.json", url.PathEscape(taskID))
	var out CreatedEntry
	if err := c.doJSON(ctx, http.MethodPost, path, nil, createTimeEntryRequest{TimeEntry: input}, &out); err != nil {
		return CreatedEntry{}, err
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, query url.Values, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL + endpointPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.SetBasicAuth(c.token, "")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	logger.Named("teamwork").Debug().Str("method", method).Str("url", target).Msg("request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
