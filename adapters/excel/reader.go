package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"
	"ecocast/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Column headers recognized in input tables. Matching is
// case-insensitive and whitespace-trimmed.
const (
	colYear     = "year"
	colValue    = "value"
	colStdDev   = "stddev"
	colScenario = "scenario"
)

// TableReader reads observation and raw-forecast tables from Excel or
// CSV files.
type TableReader struct{}

// NewTableReader creates a reader for both file formats
func NewTableReader() *TableReader {
	return &TableReader{}
}

// ReadHistory reads the historical observation table. Expected columns:
// year, value, stddev.
func (r *TableReader) ReadHistory(path string) (*series.Series, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	cols, err := headerIndex(rows[0], colYear, colValue, colStdDev)
	if err != nil {
		return nil, errors.IngestError(path, err)
	}

	obs := make([]series.Observation, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		year, err := parseFloat(rows[i], cols[colYear])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: bad year: %w", i+1, err))
		}
		value, err := parseFloat(rows[i], cols[colValue])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: bad value: %w", i+1, err))
		}
		stddev, err := parseFloat(rows[i], cols[colStdDev])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: bad stddev: %w", i+1, err))
		}
		obs = append(obs, series.Observation{
			Year:   core.Year(year),
			Value:  value,
			StdDev: stddev,
		})
	}

	log.Printf("[TableReader] history table read (%d observations) from %s", len(obs), path)
	return series.NewSeries(obs)
}

// ReadForecast reads the raw scenario forecast table. Expected columns:
// scenario, year, value.
func (r *TableReader) ReadForecast(path string) ([]forecast.RawPoint, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	cols, err := headerIndex(rows[0], colScenario, colYear, colValue)
	if err != nil {
		return nil, errors.IngestError(path, err)
	}

	points := make([]forecast.RawPoint, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		sc, err := parseCell(rows[i], cols[colScenario])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: missing scenario: %w", i+1, err))
		}
		year, err := parseFloat(rows[i], cols[colYear])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: bad year: %w", i+1, err))
		}
		value, err := parseFloat(rows[i], cols[colValue])
		if err != nil {
			return nil, errors.IngestError(path, fmt.Errorf("row %d: bad value: %w", i+1, err))
		}
		points = append(points, forecast.RawPoint{
			Scenario: scenario.ID(strings.ToLower(sc)),
			Year:     core.Year(year),
			Value:    value,
		})
	}

	log.Printf("[TableReader] forecast table read (%d points) from %s", len(points), path)
	return points, nil
}

// readRows loads all rows from an Excel or CSV file
func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.IngestError(path, fmt.Errorf("file not found"))
	}

	ext := strings.ToLower(filepath.Ext(path))
	var rows [][]string
	var err error
	startTime := time.Now()

	switch ext {
	case ".csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, err
	}

	readTime := time.Since(startTime)
	log.Printf("[TableReader] %s read in %.2fms (%d rows)", path, float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.IngestError(path, fmt.Errorf("table must have a header row and at least one data row"))
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IngestError(path, err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.IngestError(path, fmt.Errorf("failed to read Sheet1: %w", err))
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IngestError(path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.IngestError(path, err)
	}
	return rows, nil
}

// headerIndex maps required column names to their positions
func headerIndex(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return cols, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCell(row []string, idx int) (string, error) {
	if idx >= len(row) {
		return "", fmt.Errorf("column %d out of range", idx)
	}
	cell := strings.TrimSpace(row[idx])
	if cell == "" {
		return "", fmt.Errorf("empty cell")
	}
	return cell, nil
}

func parseFloat(row []string, idx int) (float64, error) {
	cell, err := parseCell(row, idx)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(cell, 64)
}
