package ports

import (
	"ecocast/domain/forecast"
	"ecocast/domain/series"
)

// TableReader ingests the two numeric input tables from an external
// collaborator (spreadsheet, CSV export, etc.). Only the values matter;
// file formats stay behind this port.
type TableReader interface {
	// ReadHistory loads the historical observation table
	ReadHistory(path string) (*series.Series, error)

	// ReadForecast loads the raw mechanistic forecast table
	ReadForecast(path string) ([]forecast.RawPoint, error)
}

// TableWriter exports a projection table for the plotting layer
type TableWriter interface {
	// WriteTable writes the blended projection rows to path
	WriteTable(path string, table *forecast.Table) error
}
