package reconcile

import (
	"math"
	"testing"

	"ecocast/adapters/stats/dynamics"
	"ecocast/adapters/stats/trend"
	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"
)

// ============================================================================
// TEST: BlendScenario
// ============================================================================

func extractionWithDeviation(t *testing.T, windowStart core.Year, values map[int]float64) *dynamics.Extraction {
	t.Helper()
	var raw []forecast.RawPoint
	for year, v := range values {
		raw = append(raw, forecast.RawPoint{
			Scenario: scenario.HighForcing,
			Year:     core.Year(year),
			Value:    v,
		})
	}
	ext, err := dynamics.Extract(scenario.HighForcing, raw, dynamics.Window{Start: windowStart, Span: 2})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return ext
}

func TestBlendScenarioWorkedExample(t *testing.T) {
	// anchor (2023.5, 55.2, stdev 3.0); slope +0.30/yr; multiplier 1.4,
	// weight 0.5; deviation(2030) = +4.0
	// value(2030) = 55.2 + 0.30*1.4*6.5 + 4.0*1.4*0.5 = 60.73
	anchor := series.Observation{Year: 2023.5, Value: 55.2, StdDev: 3.0}
	fit := trend.Fit{Slope: 0.30}
	// Baseline window covers 2023-2024 (mean 50); 2030 sits 4 above it
	ext := extractionWithDeviation(t, 2023.5, map[int]float64{
		2023: 50, 2024: 50, 2030: 54,
	})
	profile := scenario.Profile{
		ID: scenario.HighForcing, SeverityRank: 3,
		TrendMultiplier: 1.4, DynamicsWeight: 0.5,
	}

	grid := BuildGrid(anchor.Year, 2030)
	res := BlendScenario(anchor, fit, ext, profile, grid)

	if res.Drifted {
		t.Error("No drift expected when the baseline window starts at the anchor")
	}

	last := res.Trajectory.Points[len(res.Trajectory.Points)-1]
	if last.Year != 2030 {
		t.Fatalf("Expected last grid year 2030, got %v", last.Year)
	}
	if math.Abs(last.Value-60.73) > 1e-9 {
		t.Errorf("Expected value 60.73 at 2030, got %v", last.Value)
	}
}

func TestBlendScenarioContinuityAtAnchor(t *testing.T) {
	anchor := series.Observation{Year: 2023.5, Value: 55.2, StdDev: 3.0}
	fit := trend.Fit{Slope: 0.30}
	ext := extractionWithDeviation(t, 2023.5, map[int]float64{2023: 50, 2024: 50, 2030: 54})
	profile := scenario.Profile{ID: scenario.HighForcing, TrendMultiplier: 1.4, DynamicsWeight: 0.5}

	grid := BuildGrid(anchor.Year, 2030)
	res := BlendScenario(anchor, fit, ext, profile, grid)

	first := res.Trajectory.Points[0]
	if first.Year != anchor.Year {
		t.Fatalf("Grid must start at the anchor year, got %v", first.Year)
	}
	if first.Value != anchor.Value {
		t.Errorf("value(t0) = %v, want exactly anchor value %v", first.Value, anchor.Value)
	}
}

func TestBlendScenarioDriftGuard(t *testing.T) {
	// Baseline window deliberately misanchored (starts a year late), so
	// the anchor-year deviation is nonzero and the first point drifts off
	// the anchor. The guard must substitute a synthetic anchor point.
	anchor := series.Observation{Year: 2023.5, Value: 55.2, StdDev: 3.0}
	fit := trend.Fit{Slope: 0.30}
	ext := extractionWithDeviation(t, 2024.5, map[int]float64{2023: 40, 2024: 50, 2025: 50})
	profile := scenario.Profile{ID: scenario.HighForcing, TrendMultiplier: 1.0, DynamicsWeight: 1.0}

	grid := BuildGrid(anchor.Year, 2025)
	res := BlendScenario(anchor, fit, ext, profile, grid)

	if !res.Drifted {
		t.Fatal("Expected drift with a misanchored baseline window")
	}
	if res.DriftAmount < 1 {
		t.Errorf("Expected drift around 10 index units, got %v", res.DriftAmount)
	}
	if res.Trajectory.Points[0].Value != anchor.Value {
		t.Errorf("Synthetic anchor point not inserted: got %v", res.Trajectory.Points[0].Value)
	}
}

func TestBlendScenarioClampsToIndexRange(t *testing.T) {
	anchor := series.Observation{Year: 2023, Value: 95, StdDev: 1.0}
	fit := trend.Fit{Slope: 2.0} // Steep enough to blow past 100
	ext := dynamics.Empty(scenario.HighForcing)
	profile := scenario.Profile{ID: scenario.HighForcing, TrendMultiplier: 1.4, DynamicsWeight: 0.5}

	grid := BuildGrid(anchor.Year, 2035)
	res := BlendScenario(anchor, fit, ext, profile, grid)

	last := res.Trajectory.Points[len(res.Trajectory.Points)-1]
	if last.Value != forecast.IndexMax {
		t.Errorf("Expected clamp at %v, got %v", forecast.IndexMax, last.Value)
	}
}

func TestBuildGrid(t *testing.T) {
	grid := BuildGrid(2023.5, 2026)
	want := []core.Year{2023.5, 2024, 2025, 2026}
	if len(grid) != len(want) {
		t.Fatalf("Expected %d grid years, got %d", len(want), len(grid))
	}
	for i := range want {
		if grid[i] != want[i] {
			t.Errorf("grid[%d] = %v, want %v", i, grid[i], want[i])
		}
	}
}

func TestBuildGridIntegerAnchor(t *testing.T) {
	grid := BuildGrid(2023, 2025)
	want := []core.Year{2023, 2024, 2025}
	if len(grid) != len(want) {
		t.Fatalf("Expected %d grid years, got %d", len(want), len(grid))
	}
}
