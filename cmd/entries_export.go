package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twcli/internal/timeutil"
	"twcli/output"
	"twcli/reconcile"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportSince  string
	exportCount  int
)

var entriesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to CSV/Excel",
	Long: `Export the authenticated user's time entries.

Modes:
- raw: one row per time entry
- daily: per-day aggregates (hours, entry count, time off, remaining quota, projects)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export the last 500 entries to CSV
  twcli entries export --output ./entries.csv

  # Export entries since the first of March to Excel
  twcli entries export --since 2026-03-01 --output ./entries.xlsx

  # Export daily summary to CSV
  twcli entries export --mode daily --since 2026-03-01 --output ./daily-summary.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOutput) == "" {
			return errors.New("--output is required")
		}
		if exportCount <= 0 {
			return errors.New("--count must be > 0")
		}

		var since *time.Time
		if strings.TrimSpace(exportSince) != "" {
			parsed, err := timeutil.ParseISODay(exportSince)
			if err != nil {
				return err
			}
			since = &parsed
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTeamworkClient(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		entries, err := client.FetchRecentEntries(ctx, exportCount, since)
		if err != nil {
			return fmt.Errorf("fetch time entries: %w", err)
		}
		if err := ensureParentDir(exportOutput, 0o755); err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			summaries := output.BuildDailySummaries(entries, cfg.TimesOff)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	entriesCmd.AddCommand(entriesExportCmd)

	entriesExportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	entriesExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	entriesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	entriesExportCmd.Flags().StringVarP(&exportSince, "since", "s", "", "Only entries from this day on (YYYY-MM-DD)")
	entriesExportCmd.Flags().IntVarP(&exportCount, "count", "n", reconcile.FetchLimit, "Maximum number of entries")
}
