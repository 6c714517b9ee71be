package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twcli/config"
	"twcli/internal/timeutil"
	"twcli/output"
)

var (
	timeOffDate  string
	timeOffHours int
	timeOffYear  string
	timeOffMonth string
)

var timeOffCmd = &cobra.Command{
	Use:   "timeoff",
	Short: "Declare and list local time off.",
	Long: `Time off is stored in the config file only. It reduces the quota of a
working day and is never sent to Teamwork.`,
}

var timeOffSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Declare time off for a day (0 hours removes it).",
	Example: `
  twcli timeoff save -d 2026-03-13
  twcli timeoff save -d 2026-03-13 -H 4
  twcli timeoff save -d 2026-03-13 -H 0
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(timeOffDate) == "" {
			return errors.New("--date is required")
		}
		day, err := timeutil.ParseISODay(timeOffDate)
		if err != nil {
			return err
		}
		if timeOffHours < 0 || timeOffHours > 24 {
			return fmt.Errorf("hours must be between 0 and 24, got %d", timeOffHours)
		}

		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		date := timeutil.FormatISODay(day)
		if err := config.Save(path, cfg.WithTimeOff(date, timeOffHours)); err != nil {
			return err
		}
		if timeOffHours == 0 {
			fmt.Printf("Time off removed for %s\n", date)
			return nil
		}
		fmt.Printf("Time off saved: %s, %d hours\n", date, timeOffHours)
		return nil
	},
}

var timeOffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared time off for a year or a month.",
	Example: `
  # Current year
  twcli timeoff list

  # March of the current year
  twcli timeoff list -m 3

  twcli timeoff list -y 2025 -m 12
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, err := timeOffPrefix(timeOffYear, timeOffMonth, time.Now())
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		items := cfg.TimesOffMatching(prefix)
		if len(items) == 0 {
			fmt.Printf("No time off declared for %s\n", prefix)
			return nil
		}
		return output.PrintTimesOff(os.Stdout, items)
	},
}

// timeOffPrefix builds the YYYY or YYYY-MM date prefix used to filter
// declarations. The year defaults to the one of now.
func timeOffPrefix(year, month string, now time.Time) (string, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	if len(year) != 4 {
		return "", fmt.Errorf("invalid year %q", year)
	}
	if _, err := strconv.Atoi(year); err != nil {
		return "", fmt.Errorf("invalid year %q", year)
	}

	month = strings.TrimSpace(month)
	if month == "" {
		return year, nil
	}
	value, err := strconv.Atoi(month)
	if err != nil || value < 1 || value > 12 {
		return "", fmt.Errorf("invalid month %q", month)
	}
	return fmt.Sprintf("%s-%02d", year, value), nil
}

func init() {
	rootCmd.AddCommand(timeOffCmd)
	timeOffCmd.AddCommand(timeOffSaveCmd)
	timeOffCmd.AddCommand(timeOffListCmd)

	timeOffSaveCmd.Flags().StringVarP(&timeOffDate, "date", "d", "", "Day off (YYYY-MM-DD)")
	timeOffSaveCmd.Flags().IntVarP(&timeOffHours, "hours", "H", timeutil.HoursPerDay, "Hours off")
	timeOffListCmd.Flags().StringVarP(&timeOffYear, "year", "y", "", "Year (default: current year)")
	timeOffListCmd.Flags().StringVarP(&timeOffMonth, "month", "m", "", "Month, 1-12")
}
