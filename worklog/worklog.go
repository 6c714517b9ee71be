package worklog

import (
	"fmt"
	"time"
)

// Labeled is implemented by anything shown as a menu item or table label.
type Labeled interface {
	Label() string
}

// Entry is the normalized time entry snapshot used by the reconciliation core
// and the outputs. Entries are read-only once fetched.
type Entry struct {
	ID           string
	Date         time.Time
	Hours        int
	Minutes      int
	TaskID       string
	TaskName     string
	TaskListName string
	ProjectID    string
	ProjectName  string
	Description  string
}

// Day returns the entry date on the local calendar.
func (e Entry) Day() time.Time {
	local := e.Date.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// Task is a remote task used as an allocation target.
type Task struct {
	ID       string
	Name     string
	ParentID string
	SubTasks []Task
}

func (t Task) Label() string {
	if len(t.SubTasks) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s (%d sub tasks)", t.Name, len(t.SubTasks))
}

// TaskItem is one row of a flattened task tree.
type TaskItem struct {
	Task  Task
	IsSub bool
}

func (i TaskItem) Label() string {
	if i.IsSub {
		return "    " + i.Task.Name
	}
	return i.Task.Label()
}

// FlattenTasks lists every task directly followed by its sub-tasks.
func FlattenTasks(tasks []Task) []TaskItem {
	out := make([]TaskItem, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, TaskItem{Task: task})
		for _, sub := range task.SubTasks {
			out = append(out, TaskItem{Task: sub, IsSub: true})
		}
	}
	return out
}

// UniqueTasks returns the tasks referenced by entries in first-seen order.
func UniqueTasks(entries []Entry) []Task {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Task, 0, len(entries))
	for _, entry := range entries {
		if entry.TaskID == "" {
			continue
		}
		if _, ok := seen[entry.TaskID]; ok {
			continue
		}
		seen[entry.TaskID] = struct{}{}
		out = append(out, Task{ID: entry.TaskID, Name: entry.TaskName})
	}
	return out
}
