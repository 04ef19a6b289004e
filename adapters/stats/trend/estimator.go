package trend

import (
	"fmt"
	"math"

	"ecocast/domain/core"
	"ecocast/domain/series"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// TREND ESTIMATOR
// ============================================================================
// Fits the historical stress-index series with ordinary least squares:
// value = intercept + slope * year. The slope is the "observed trend" half
// of the reconciliation; the mechanistic model supplies the other half.
// Pure function, no state.
// ============================================================================

// Fit holds the fitted linear trend
type Fit struct {
	Slope       float64 `json:"slope"`        // Index units per year
	Intercept   float64 `json:"intercept"`    // Index units at year 0
	R2          float64 `json:"r_squared"`    // Goodness of fit (0-1)
	ResidualStd float64 `json:"residual_std"` // Std dev of residuals, diagnostic only
	N           int     `json:"n"`
}

// ValueAt evaluates the fitted line at a year
func (f Fit) ValueAt(year core.Year) float64 {
	return f.Intercept + f.Slope*year.Float()
}

// Estimate fits the trend over the ordered historical series.
// Fails with core.ErrInsufficientData when fewer than two observations
// exist, and with core.ErrDegenerateSeries when all observations share one
// time coordinate (degenerate design matrix).
func Estimate(s *series.Series) (Fit, error) {
	if s == nil || s.Len() < 2 {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return Fit{}, fmt.Errorf("%w: need at least 2 observations, got %d",
			core.ErrInsufficientData, n)
	}

	years := s.Years()
	values := s.Values()

	if allEqual(years) {
		return Fit{}, fmt.Errorf("%w: year %v repeated %d times",
			core.ErrDegenerateSeries, years[0], len(years))
	}

	intercept, slope := stat.LinearRegression(years, values, nil, false)

	residuals := make([]float64, len(values))
	for i := range values {
		residuals[i] = values[i] - (intercept + slope*years[i])
	}
	residualStd, _ := stats.StandardDeviation(residuals)

	return Fit{
		Slope:       slope,
		Intercept:   intercept,
		R2:          stat.RSquared(years, values, nil, intercept, slope),
		ResidualStd: residualStd,
		N:           s.Len(),
	}, nil
}

func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if math.Abs(x-xs[0]) > 0 {
			return false
		}
	}
	return true
}
