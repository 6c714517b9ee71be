package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
	"twcli/internal/logger"
	"twcli/submitter"
	"twcli/teamwork"
	"twcli/worklog"
)

// interactiveClient is the part of the Teamwork client used by the menus.
type interactiveClient interface {
	submitter.Gateway
	ListProjects(ctx context.Context, searchTerm string) ([]teamwork.Project, error)
	ListTaskLists(ctx context.Context, projectID string) ([]teamwork.TaskList, error)
	ListTasks(ctx context.Context, taskListID string) ([]teamwork.Task, error)
	LastUsedTasks(ctx context.Context) ([]worklog.Task, error)
}

type menuItem string

func (m menuItem) Label() string { return string(m) }

const (
	menuStarred = menuItem("Starred tasks")
	menuRecent  = menuItem("Recently used tasks")
	menuSearch  = menuItem("Search tasks")
	menuQuit    = menuItem("Quit")

	actionSave   = menuItem("Save time")
	actionStar   = menuItem("Star task")
	actionUnstar = menuItem("Unstar task")
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Pick a task from menus and act on it.",
	Long: `Browse starred tasks, recently used tasks, or search
project -> task list -> task (sub-tasks included), then save time on the
selected task or star it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTeamworkClient(cfg)
		if err != nil {
			return err
		}

		session := &interactiveSession{
			ctx:     cmd.Context(),
			reader:  bufio.NewReader(promptInput),
			out:     promptOutput,
			cfg:     *cfg,
			cfgPath: path,
			client:  client,
		}
		store, err := openJournal()
		if err != nil {
			logger.Named("cmd").Warn().Err(err).Msg("journal unavailable, continuing without it")
		} else {
			defer store.Close()
			session.journal = store
		}
		return session.run()
	},
}

type interactiveSession struct {
	ctx     context.Context
	reader  *bufio.Reader
	out     io.Writer
	cfg     config.Config
	cfgPath string
	client  interactiveClient
	journal submitter.Journal
}

func (s *interactiveSession) operationContext() (context.Context, context.CancelFunc) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	if apiTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, apiTimeout)
}

func (s *interactiveSession) run() error {
	for {
		choice, err := promptSelectLabeled(s.reader, s.out, "What do you want to do?", []menuItem{menuStarred, menuRecent, menuSearch, menuQuit})
		if errors.Is(err, errBack) || choice == menuQuit {
			return nil
		}
		if err != nil {
			return err
		}

		var task worklog.Task
		switch choice {
		case menuStarred:
			task, err = s.pickStarredTask()
		case menuRecent:
			task, err = s.pickRecentTask()
		case menuSearch:
			task, err = s.searchTask()
		}
		if errors.Is(err, errBack) {
			continue
		}
		if err != nil {
			return err
		}

		if err := s.handleTask(task); err != nil && !errors.Is(err, errBack) {
			return err
		}
	}
}

func (s *interactiveSession) pickStarredTask() (worklog.Task, error) {
	if len(s.cfg.StarredTasks) == 0 {
		fmt.Fprintln(s.out, "No starred tasks.")
		return worklog.Task{}, errBack
	}

	names := map[string]string{}
	ctx, cancel := s.operationContext()
	recent, err := s.client.LastUsedTasks(ctx)
	cancel()
	if err != nil {
		logger.Named("cmd").Debug().Err(err).Msg("could not resolve starred task names")
	}
	for _, task := range recent {
		names[task.ID] = task.Name
	}

	tasks := make([]worklog.Task, 0, len(s.cfg.StarredTasks))
	for _, id := range s.cfg.StarredTasks {
		name := names[id]
		if name == "" {
			name = "Task " + id
		}
		tasks = append(tasks, worklog.Task{ID: id, Name: name})
	}
	return promptSelectLabeled(s.reader, s.out, "Choose a starred task:", tasks)
}

func (s *interactiveSession) pickRecentTask() (worklog.Task, error) {
	ctx, cancel := s.operationContext()
	defer cancel()
	tasks, err := s.client.LastUsedTasks(ctx)
	if err != nil {
		return worklog.Task{}, fmt.Errorf("fetch last used tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "No recently used tasks.")
		return worklog.Task{}, errBack
	}
	return promptSelectLabeled(s.reader, s.out, "Choose a task:", tasks)
}

func (s *interactiveSession) searchTask() (worklog.Task, error) {
	term, err := promptOptionalString(s.reader, s.out, "Project search term (empty for all)")
	if err != nil {
		return worklog.Task{}, err
	}

	ctx, cancel := s.operationContext()
	projects, err := s.client.ListProjects(ctx, term)
	cancel()
	if err != nil {
		return worklog.Task{}, fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(s.out, "No projects found.")
		return worklog.Task{}, errBack
	}
	project, err := promptSelectLabeled(s.reader, s.out, "Choose a project:", projects)
	if err != nil {
		return worklog.Task{}, err
	}

	ctx, cancel = s.operationContext()
	lists, err := s.client.ListTaskLists(ctx, project.ID.String())
	cancel()
	if err != nil {
		return worklog.Task{}, fmt.Errorf("list task lists of project %s: %w", project.Name, err)
	}
	if len(lists) == 0 {
		fmt.Fprintln(s.out, "No task lists in this project.")
		return worklog.Task{}, errBack
	}
	list, err := promptSelectLabeled(s.reader, s.out, "Choose a task list:", lists)
	if err != nil {
		return worklog.Task{}, err
	}

	ctx, cancel = s.operationContext()
	remote, err := s.client.ListTasks(ctx, list.ID.String())
	cancel()
	if err != nil {
		return worklog.Task{}, fmt.Errorf("list tasks of task list %s: %w", list.Name, err)
	}
	tasks := make([]worklog.Task, 0, len(remote))
	for _, task := range remote {
		tasks = append(tasks, task.ToTask())
	}
	items := worklog.FlattenTasks(tasks)
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No tasks in this task list.")
		return worklog.Task{}, errBack
	}
	item, err := promptSelectLabeled(s.reader, s.out, "Choose a task:", items)
	if err != nil {
		return worklog.Task{}, err
	}
	return item.Task, nil
}

func (s *interactiveSession) handleTask(task worklog.Task) error {
	for {
		star := actionStar
		if s.cfg.IsStarred(task.ID) {
			star = actionUnstar
		}

		title := fmt.Sprintf("Task %s (%s): what do you want to do?", strings.TrimSpace(task.Name), task.ID)
		action, err := promptSelectLabeled(s.reader, s.out, title, []menuItem{actionSave, star})
		if err != nil {
			return err
		}

		switch action {
		case actionSave:
			if err := s.saveTime(task); err != nil {
				return err
			}
		case actionStar:
			if err := s.updateConfig(s.cfg.WithStarredTask(task.ID)); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Task %s starred\n", task.ID)
		case actionUnstar:
			if err := s.updateConfig(s.cfg.WithoutStarredTask(task.ID)); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Task %s unstarred\n", task.ID)
		}
	}
}

func (s *interactiveSession) saveTime(task worklog.Task) error {
	start, err := promptRequiredString(s.reader, s.out, "Start date (YYYY-MM-DD)")
	if err != nil {
		return err
	}
	duration, err := promptRequiredString(s.reader, s.out, "Hours (e.g. 1d4h)")
	if err != nil {
		return err
	}
	description, err := promptOptionalString(s.reader, s.out, "Description (optional)")
	if err != nil {
		return err
	}
	dryRun, err := promptYesNo(s.reader, s.out, "Dry run?")
	if err != nil {
		return err
	}

	req, err := buildSaveRequest(task.ID, start, duration, description, dryRun)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid input: %v\n", err)
		return nil
	}

	service := submitter.NewService(s.client, s.cfg.TimesOff)
	if s.journal != nil {
		service.WithJournal(s.journal)
	}
	ctx, cancel := s.operationContext()
	defer cancel()
	result, err := service.SaveTime(ctx, req)
	if err != nil {
		return err
	}
	return printSaveResult(s.out, result)
}

func (s *interactiveSession) updateConfig(updated config.Config) error {
	if err := config.Save(s.cfgPath, updated); err != nil {
		return err
	}
	s.cfg = updated
	return nil
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
