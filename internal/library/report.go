package library

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Aspect Ratios"

var reportHeader = []interface{}{
	"Path", "Primary", "Secondary", "Primary Raw", "Secondary Raw", "Samples", "Skipped", "Error",
}

// WriteReport saves entries as an xlsx workbook at path.
func WriteReport(path string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		errText := ""
		if e.Err != nil {
			errText = e.Err.Error()
		}
		row := []interface{}{
			e.Path,
			ratioCell(e.Result.PrimaryCanonical),
			ratioCell(e.Result.SecondaryCanonical),
			e.Result.PrimaryRaw,
			e.Result.SecondaryRaw,
			e.Result.TotalSamples,
			e.Skipped,
			errText,
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

// ratioCell leaves the cell empty for "no ratio".
func ratioCell(r float64) interface{} {
	if r == 0 {
		return ""
	}
	return r
}
