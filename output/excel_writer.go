package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"twcli/worklog"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []worklog.Entry) error {
	return writeExcel(path, entrySheet(entries))
}

// writeExcel stores data on a single sheet with a bold, frozen header row.
func writeExcel(path string, data sheet) error {
	file := excelize.NewFile()
	defer file.Close()

	name := file.GetSheetName(0)
	if data.name != "" && data.name != name {
		if err := file.SetSheetName(name, data.name); err != nil {
			return fmt.Errorf("rename excel sheet: %w", err)
		}
		name = data.name
	}

	headers := data.headers
	if err := file.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("write excel header: %w", err)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create excel header style: %w", err)
	}
	if err := file.SetRowStyle(name, 1, 1, bold); err != nil {
		return fmt.Errorf("style excel header: %w", err)
	}
	if err := file.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze excel header: %w", err)
	}

	for i := range data.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(name, cell, &data.rows[i]); err != nil {
			return fmt.Errorf("write excel row %d: %w", i+2, err)
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
