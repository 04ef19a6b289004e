package dynamics

import (
	"errors"
	"math"
	"testing"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
)

// ============================================================================
// TEST: Extract
// ============================================================================

func highPoints(values map[int]float64) []forecast.RawPoint {
	var out []forecast.RawPoint
	for year, v := range values {
		out = append(out, forecast.RawPoint{
			Scenario: scenario.HighForcing,
			Year:     core.Year(year),
			Value:    v,
		})
	}
	return out
}

func TestExtractBaselineFromWindow(t *testing.T) {
	raw := highPoints(map[int]float64{
		2024: 60, 2025: 62, 2026: 70, 2027: 74,
	})

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2024, Span: 2})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Baseline = mean(60, 62) = 61
	if math.Abs(ext.Baseline-61) > 1e-9 {
		t.Errorf("Expected baseline 61, got %v", ext.Baseline)
	}
	if ext.FellBack {
		t.Error("Window had points; no fallback expected")
	}

	if dev := ext.DeviationAt(2026); math.Abs(dev-9) > 1e-9 {
		t.Errorf("Expected deviation 9 at 2026, got %v", dev)
	}
}

func TestExtractFractionalYearJoin(t *testing.T) {
	// The defect class from the plotting scripts: a fractional survey time
	// queried against integer mechanistic years must not return zero.
	raw := highPoints(map[int]float64{2024: 60, 2025: 66})

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2024, Span: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if dev := ext.DeviationAt(2025.5); math.Abs(dev-6) > 1e-9 {
		t.Errorf("Expected 2025.5 to join onto year 2025 (deviation 6), got %v", dev)
	}
}

func TestExtractMissingYearContributesZero(t *testing.T) {
	raw := highPoints(map[int]float64{2024: 60, 2026: 70}) // gap at 2025

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2024, Span: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if dev := ext.DeviationAt(2025); dev != 0 {
		t.Errorf("Expected zero deviation for missing year, got %v", dev)
	}
}

func TestExtractFallbackToWholeSeriesMean(t *testing.T) {
	// Window covers 2020-2021 but the forecast starts at 2030
	raw := highPoints(map[int]float64{2030: 50, 2031: 60, 2032: 70})

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2020, Span: 2})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !ext.FellBack {
		t.Error("Expected whole-series fallback for empty window")
	}
	if math.Abs(ext.Baseline-60) > 1e-9 {
		t.Errorf("Expected whole-series mean 60, got %v", ext.Baseline)
	}
}

func TestExtractFiltersOtherScenarios(t *testing.T) {
	raw := []forecast.RawPoint{
		{Scenario: scenario.HighForcing, Year: 2024, Value: 60},
		{Scenario: scenario.LowForcing, Year: 2024, Value: 10},
	}

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2024, Span: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Baseline != 60 {
		t.Errorf("Low-forcing rows leaked into the baseline: got %v", ext.Baseline)
	}
	if ext.CoveredYears() != 1 {
		t.Errorf("Expected 1 covered year, got %d", ext.CoveredYears())
	}
}

func TestExtractDuplicateYearRowsAveraged(t *testing.T) {
	raw := []forecast.RawPoint{
		{Scenario: scenario.HighForcing, Year: 2024, Value: 58},
		{Scenario: scenario.HighForcing, Year: 2024.0, Value: 62},
		{Scenario: scenario.HighForcing, Year: 2025, Value: 66},
	}

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2024, Span: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// Baseline = mean of the deduped 2024 value (60)
	if math.Abs(ext.Baseline-60) > 1e-9 {
		t.Errorf("Expected baseline 60, got %v", ext.Baseline)
	}
}

func TestExtractEmptyForecast(t *testing.T) {
	_, err := Extract(scenario.HighForcing, nil, Window{Start: 2024, Span: 2})
	if !errors.Is(err, core.ErrEmptyForecast) {
		t.Errorf("Expected ErrEmptyForecast, got %v", err)
	}
}

func TestExtractDeviationNearZeroAtWindowStart(t *testing.T) {
	// With a flat early window the anchor-year deviation is exactly zero,
	// which is what keeps the blended trajectory continuous at the anchor.
	raw := highPoints(map[int]float64{2023: 55, 2024: 55, 2025: 61})

	ext, err := Extract(scenario.HighForcing, raw, Window{Start: 2023, Span: 2})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if dev := ext.DeviationAt(2023.5); math.Abs(dev) > 1e-9 {
		t.Errorf("Expected zero deviation at window start, got %v", dev)
	}
}
