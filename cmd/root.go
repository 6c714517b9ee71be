/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"twcli/config"
	"twcli/internal/logger"
)

const notConfiguredMessage = "No config file found. Init it by authenticating with: twcli auth"

var (
	cfgFile    string
	dbFile     string
	apiTimeout time.Duration
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twcli",
	Short: "Log and reconcile working hours against Teamwork.",
	Long: `
**********************************************
*                 TWCLI                      *
**********************************************

This CLI lists Teamwork projects, tasks and time entries, computes how many
hours are missing since a date, and spreads a number of hours over the
working days that still have free quota.

A working day has a quota of 8 hours. Declared time off reduces the quota.
Weekends are never filled.
`,
	Example: `
  # Store credentials in $HOME/.teamwork.json
  twcli auth -c mycompany -t twp_xxxxxxxx

  # How much time is missing since the first of the month?
  twcli entries missing -s 2026-03-01

  # Preview spreading 2 days and 4 hours on a task (no writes)
  twcli entries save -t 1001 -s 2026-03-01 -H 2d4h -d "feature work" --dry-run

  # Declare half a day off
  twcli timeoff save -d 2026-03-13 -H 4

  # Pick a task from menus
  twcli interactive
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opts := logger.FromEnv()
		if cmd.Flags().Changed("log-level") {
			opts.Level = logLevel
		}
		logger.Init(opts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			fmt.Println(notConfiguredMessage)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file override (default: $HOME/.teamwork.json)")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "", "Journal database override (default: $HOME/.twcli/journal.db)")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", 60*time.Second, "Timeout per Teamwork API operation")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error, disabled); env TWCLI_LOG_LEVEL")
}
