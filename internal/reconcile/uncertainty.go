package reconcile

import (
	"math"

	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================================
// UNCERTAINTY ESTIMATOR
// ============================================================================
// Grows a band around each trajectory, anchored to the last observed
// variability:
//
//	uncertainty(t) = z * (anchor.stdev + growth * g(elapsed))
//
// g is identity under the linear model (the default: band width reads as
// "stdev plus rate per year") or sqrt under the sqrt model, which is
// materially narrower at long horizons. z is 1 unless a confidence level
// is requested, in which case it is the matching normal quantile.
// ============================================================================

// UncertaintyEstimator widens trajectories into banded trajectories
type UncertaintyEstimator struct {
	GrowthRate float64
	Model      scenario.GrowthModel

	// ConfidenceLevel optionally rescales the band to a two-sided normal
	// interval (e.g. 0.95). Zero keeps the raw one-sigma band.
	ConfidenceLevel float64
}

// Apply fills Lower/Upper on every point in place
func (u UncertaintyEstimator) Apply(tr *forecast.Trajectory, anchor series.Observation) {
	z := u.zScale()
	for i := range tr.Points {
		p := &tr.Points[i]
		elapsed := p.Year.Elapsed(anchor.Year)
		band := z * (anchor.StdDev + u.GrowthRate*u.grow(elapsed))
		p.Lower = forecast.ClampIndex(p.Value - band)
		p.Upper = forecast.ClampIndex(p.Value + band)
	}
}

func (u UncertaintyEstimator) grow(elapsed float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	if u.Model == scenario.GrowthSqrt {
		return math.Sqrt(elapsed)
	}
	return elapsed
}

func (u UncertaintyEstimator) zScale() float64 {
	if u.ConfidenceLevel <= 0 || u.ConfidenceLevel >= 1 {
		return 1.0
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.Quantile(0.5 + u.ConfidenceLevel/2)
}
