package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"twcli/worklog"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []worklog.Entry) error {
	return writeCSV(path, entrySheet(entries))
}

func writeCSV(path string, data sheet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	records := make([][]string, 0, len(data.rows)+1)
	records = append(records, data.headers)
	records = append(records, data.rows...)
	if err := csv.NewWriter(file).WriteAll(records); err != nil {
		return fmt.Errorf("write csv output %s: %w", path, err)
	}
	return nil
}
