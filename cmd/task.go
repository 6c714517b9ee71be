package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage starred tasks.",
	Long: `Starred tasks are kept in the config file and offered first in
interactive mode.`,
}

var taskStarCmd = &cobra.Command{
	Use:   "star <task-id>",
	Short: "Star a task.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateStarredTask(args[0], true)
	},
}

var taskUnstarCmd = &cobra.Command{
	Use:   "unstar <task-id>",
	Short: "Remove a task from the starred tasks.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateStarredTask(args[0], false)
	},
}

var taskStarredCmd = &cobra.Command{
	Use:   "starred",
	Short: "List starred task ids.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.StarredTasks) == 0 {
			fmt.Println("No starred tasks.")
			return nil
		}
		for _, id := range cfg.StarredTasks {
			fmt.Println(id)
		}
		return nil
	},
}

func updateStarredTask(taskID string, starred bool) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return errors.New("task id must not be empty")
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	var updated config.Config
	if starred {
		updated = cfg.WithStarredTask(taskID)
	} else {
		if !cfg.IsStarred(taskID) {
			return fmt.Errorf("task %s is not starred", taskID)
		}
		updated = cfg.WithoutStarredTask(taskID)
	}
	if err := config.Save(path, updated); err != nil {
		return err
	}

	if starred {
		fmt.Printf("Task %s starred\n", taskID)
	} else {
		fmt.Printf("Task %s unstarred\n", taskID)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskStarCmd)
	taskCmd.AddCommand(taskUnstarCmd)
	taskCmd.AddCommand(taskStarredCmd)
}
