package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ecocast/domain/forecast"
	"ecocast/internal/errors"

	"github.com/xuri/excelize/v2"
)

var outputHeaders = []string{"scenario", "year", "value", "lower", "upper"}

// TableWriter exports a blended projection table to Excel or CSV,
// chosen by file extension.
type TableWriter struct{}

// NewTableWriter creates a writer for both output formats
func NewTableWriter() *TableWriter {
	return &TableWriter{}
}

// WriteTable writes the projection table, one row per scenario-year
func (w *TableWriter) WriteTable(path string, table *forecast.Table) error {
	rows := table.Rows()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return writeCSV(path, rows)
	}
	return writeExcel(path, rows)
}

func writeExcel(path string, rows []forecast.BlendedPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return errors.ExportError(path, err)
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range outputHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.ExportError(path, err)
		}
	}

	for r, p := range rows {
		rowIdx := r + 2
		values := []interface{}{string(p.Scenario), p.Year.Float(), p.Value, p.Lower, p.Upper}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.ExportError(path, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportError(path, err)
	}
	return nil
}

func writeCSV(path string, rows []forecast.BlendedPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportError(path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(outputHeaders); err != nil {
		return errors.ExportError(path, err)
	}
	for _, p := range rows {
		record := []string{
			string(p.Scenario),
			formatFloat(p.Year.Float()),
			formatFloat(p.Value),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
		}
		if err := cw.Write(record); err != nil {
			return errors.ExportError(path, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
