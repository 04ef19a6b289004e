package reconcile

import (
	"math"

	"ecocast/adapters/stats/dynamics"
	"ecocast/adapters/stats/trend"
	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"
)

// ============================================================================
// ANCHORING / BLENDER
// ============================================================================
// Combines the last observed value, the scaled historical trend, and the
// scaled mechanistic deviation into one continuous trajectory per scenario:
//
//	value(t) = anchor + slope*mult*(t-t0) + deviation(t)*mult*weight
//
// At t = t0 the elapsed term is zero and the deviation is ~0 by
// construction (the baseline window starts at t0), so the trajectory passes
// through the anchor without a special case. A drift guard re-pins the
// anchor when floating-point accumulation moves it anyway.
// ============================================================================

// continuityTolerance is the absolute drift at the anchor above which an
// explicit anchor point is substituted.
const continuityTolerance = 1e-6

// BlendResult is one scenario's blended values plus drift diagnostics
type BlendResult struct {
	Trajectory forecast.Trajectory
	// Drifted is set when the first point missed the anchor by more than
	// the tolerance and was replaced with a synthetic anchor point.
	Drifted bool
	// DriftAmount is the absolute miss before re-pinning
	DriftAmount float64
}

// BlendScenario evaluates the blend over the year grid. The grid must start
// at the anchor year; the pipeline guarantees this.
func BlendScenario(
	anchor series.Observation,
	fit trend.Fit,
	ext *dynamics.Extraction,
	profile scenario.Profile,
	grid []core.Year,
) BlendResult {
	points := make([]forecast.BlendedPoint, 0, len(grid))
	for _, year := range grid {
		elapsed := year.Elapsed(anchor.Year)
		trendComponent := fit.Slope * profile.TrendMultiplier * elapsed
		dynamicsComponent := ext.DeviationAt(year) * profile.TrendMultiplier * profile.DynamicsWeight

		value := forecast.ClampIndex(anchor.Value + trendComponent + dynamicsComponent)
		points = append(points, forecast.BlendedPoint{
			Scenario: profile.ID,
			Year:     year,
			Value:    value,
		})
	}

	result := BlendResult{
		Trajectory: forecast.Trajectory{Scenario: profile.ID, Points: points},
	}

	if len(points) > 0 {
		drift := math.Abs(points[0].Value - anchor.Value)
		if drift > continuityTolerance {
			// Residual discontinuity: substitute the explicit anchor point
			points[0].Value = anchor.Value
			result.Drifted = true
			result.DriftAmount = drift
		}
	}
	return result
}

// BuildGrid returns the forecast time grid: the anchor year itself, then
// every whole year after it through lastYear. The anchor sits on the
// fractional survey axis; all later points sit on the mechanistic model's
// integer axis.
func BuildGrid(anchorYear core.Year, lastYear core.Year) []core.Year {
	grid := []core.Year{anchorYear}
	for y := int(anchorYear.Key()) + 1; y <= int(lastYear.Key()); y++ {
		grid = append(grid, core.Year(y))
	}
	return grid
}
