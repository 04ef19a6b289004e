// Package testkit builds deterministic synthetic inputs for the
// reconciliation engine. Used by package tests and by the demo ingest
// path when no real tables are configured.
package testkit

import (
	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"
)

// HistoryParams describes a linear historical series with a fixed
// per-observation standard deviation.
type HistoryParams struct {
	StartYear core.Year
	Points    int
	Level     float64
	Slope     float64
	StdDev    float64
}

// DefaultHistoryParams yields a decade of mid-year observations with a
// mild upward trend, anchored at 2023.5.
func DefaultHistoryParams() HistoryParams {
	return HistoryParams{
		StartYear: 2014.5,
		Points:    10,
		Level:     52.5,
		Slope:     0.3,
		StdDev:    3.0,
	}
}

// History generates a synthetic observation series.
func History(p HistoryParams) (*series.Series, error) {
	obs := make([]series.Observation, 0, p.Points)
	for i := 0; i < p.Points; i++ {
		obs = append(obs, series.Observation{
			Year:   p.StartYear + core.Year(i),
			Value:  p.Level + p.Slope*float64(i),
			StdDev: p.StdDev,
		})
	}
	return series.NewSeries(obs)
}

// ForecastParams describes per-scenario linear raw forecasts on an
// integer year grid.
type ForecastParams struct {
	StartYear core.Year
	EndYear   core.Year
	Levels    map[scenario.ID]float64
	Slopes    map[scenario.ID]float64
}

// DefaultForecastParams yields diverging raw scenario paths from 2023
// to 2035, with deviations spread enough to exercise the blender.
func DefaultForecastParams() ForecastParams {
	return ForecastParams{
		StartYear: 2023,
		EndYear:   2035,
		Levels: map[scenario.ID]float64{
			scenario.LowForcing:      30,
			scenario.ModerateForcing: 50,
			scenario.HighForcing:     80,
		},
		Slopes: map[scenario.ID]float64{
			scenario.LowForcing:      0.3,
			scenario.ModerateForcing: 0.4,
			scenario.HighForcing:     0.6,
		},
	}
}

// Forecast generates synthetic raw scenario points. Scenarios are
// emitted in severity order so output is reproducible.
func Forecast(p ForecastParams) []forecast.RawPoint {
	order := []scenario.ID{scenario.LowForcing, scenario.ModerateForcing, scenario.HighForcing}
	var points []forecast.RawPoint
	for _, sc := range order {
		level, ok := p.Levels[sc]
		if !ok {
			continue
		}
		slope := p.Slopes[sc]
		for y := p.StartYear; y <= p.EndYear; y++ {
			points = append(points, forecast.RawPoint{
				Scenario: sc,
				Year:     y,
				Value:    level + slope*y.Elapsed(p.StartYear),
			})
		}
	}
	return points
}
