package testkit

import (
	"ecocast/domain/forecast"
	"ecocast/domain/series"
	"ecocast/ports"
)

// StaticReader serves fixed in-memory tables regardless of path
type StaticReader struct {
	HistoryTable  *series.Series
	ForecastTable []forecast.RawPoint
}

// NewStaticReader builds a reader over the default synthetic inputs
func NewStaticReader() (*StaticReader, error) {
	history, err := History(DefaultHistoryParams())
	if err != nil {
		return nil, err
	}
	return &StaticReader{
		HistoryTable:  history,
		ForecastTable: Forecast(DefaultForecastParams()),
	}, nil
}

var _ ports.TableReader = (*StaticReader)(nil)

func (r *StaticReader) ReadHistory(path string) (*series.Series, error) {
	return r.HistoryTable, nil
}

func (r *StaticReader) ReadForecast(path string) ([]forecast.RawPoint, error) {
	return r.ForecastTable, nil
}
