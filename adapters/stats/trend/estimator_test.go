package trend

import (
	"errors"
	"math"
	"testing"

	"ecocast/domain/core"
	"ecocast/domain/series"
)

// ============================================================================
// TEST: Estimate
// ============================================================================

func TestEstimatePerfectLine(t *testing.T) {
	// value = 10 + 0.3 * (year - 2014), i.e. slope 0.3
	obs := []series.Observation{}
	for i := 0; i < 10; i++ {
		year := core.Year(2014 + i)
		obs = append(obs, series.Observation{Year: year, Value: 10 + 0.3*float64(i), StdDev: 1})
	}
	s := series.MustNewSeries(obs)

	fit, err := Estimate(s)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if math.Abs(fit.Slope-0.3) > 1e-9 {
		t.Errorf("Expected slope 0.3, got %v", fit.Slope)
	}
	if math.Abs(fit.R2-1.0) > 1e-9 {
		t.Errorf("Expected R2 1.0 for a perfect line, got %v", fit.R2)
	}
	if fit.ResidualStd > 1e-9 {
		t.Errorf("Expected near-zero residual std, got %v", fit.ResidualStd)
	}
	if fit.N != 10 {
		t.Errorf("Expected N=10, got %d", fit.N)
	}
}

func TestEstimateValueAt(t *testing.T) {
	s := series.MustNewSeries([]series.Observation{
		{Year: 2020, Value: 50, StdDev: 1},
		{Year: 2022, Value: 52, StdDev: 1},
	})

	fit, err := Estimate(s)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if got := fit.ValueAt(2024); math.Abs(got-54) > 1e-9 {
		t.Errorf("Expected extrapolated value 54 at 2024, got %v", got)
	}
}

func TestEstimateInsufficientData(t *testing.T) {
	s := series.MustNewSeries([]series.Observation{{Year: 2020, Value: 50, StdDev: 1}})

	_, err := Estimate(s)
	if err == nil {
		t.Fatal("Expected error for single-point series")
	}
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestEstimateDegenerateDesignMatrix(t *testing.T) {
	// Two observations at the same time coordinate
	s := series.MustNewSeries([]series.Observation{
		{Year: 2020, Value: 50, StdDev: 1},
		{Year: 2020, Value: 52, StdDev: 1},
	})

	_, err := Estimate(s)
	if !errors.Is(err, core.ErrDegenerateSeries) {
		t.Errorf("Expected ErrDegenerateSeries, got %v", err)
	}
	// Degenerate input is still an insufficient-data failure for callers
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Expected ErrDegenerateSeries to wrap ErrInsufficientData, got %v", err)
	}
}

func TestEstimateNoisySlopeSign(t *testing.T) {
	// Rising series with alternating noise should still fit a positive slope
	obs := []series.Observation{}
	noise := []float64{0.8, -0.6, 0.4, -0.9, 0.2, -0.3, 0.7, -0.5}
	for i, eps := range noise {
		obs = append(obs, series.Observation{
			Year:   core.Year(2016 + i),
			Value:  40 + 1.2*float64(i) + eps,
			StdDev: 1,
		})
	}
	fit, err := Estimate(series.MustNewSeries(obs))
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if fit.Slope <= 0 {
		t.Errorf("Expected positive slope, got %v", fit.Slope)
	}
}
